package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azvault/azvault/pkg/azvault/audit"
	"github.com/azvault/azvault/pkg/azvault/auth"
	"github.com/azvault/azvault/pkg/azvault/client"
	"github.com/azvault/azvault/pkg/azvault/config"
	"github.com/azvault/azvault/pkg/azvault/output"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
}

type runtimeState struct {
	configPath      string
	cfg             *config.Config
	outputFormat    string
	tenantOverride  string
	storageOverride string
	verbose         bool
	writer          io.Writer
	log             *zap.Logger

	manager *auth.Manager
	apic    *client.Client
	auditor *audit.Logger
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter}

	root := &cobra.Command{
		Use:   "azvault",
		Short: "Azure Key Vault client",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("AZVAULT_OUTPUT")
			}
			if rt.tenantOverride == "" {
				rt.tenantOverride = os.Getenv("AZVAULT_TENANT")
			}
			if rt.storageOverride == "" {
				rt.storageOverride = os.Getenv("AZVAULT_SESSION_STORAGE")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("AZVAULT_VERBOSE"), "true")
			}

			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}

			loaded, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			rt.cfg = loaded

			rt.log = zap.NewNop()
			if rt.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				rt.log = logger
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml, csv")
	root.PersistentFlags().StringVar(&rt.tenantOverride, "tenant", "", "Tenant ID override")
	root.PersistentFlags().StringVar(&rt.storageOverride, "session-storage", "", "Session storage backend: keyring or file")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose logging")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewAuthCommand(),
		NewTenantCommand(),
		NewSubscriptionCommand(),
		NewVaultCommand(),
		NewSecretCommand(),
		NewKeyCommand(),
		NewCertificateCommand(),
		NewAuditCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) OutputFormat() (output.Format, error) {
	raw := rt.outputFormat
	if raw == "" && rt.cfg != nil {
		raw = rt.cfg.Settings.OutputFormat
	}
	return output.ParseFormat(raw)
}

func (rt *runtimeState) sessionStorage() string {
	if rt.storageOverride != "" {
		return rt.storageOverride
	}
	if rt.cfg != nil && rt.cfg.SessionStorage != "" {
		return rt.cfg.SessionStorage
	}
	return auth.StorageKeyring
}

// Manager lazily builds the token manager wired to the configured session
// store and the Azure CLI fallback.
func (rt *runtimeState) Manager() (*auth.Manager, error) {
	if rt.manager != nil {
		return rt.manager, nil
	}
	store, err := auth.NewSessionStore(rt.sessionStorage(), config.DefaultSessionPath())
	if err != nil {
		return nil, err
	}
	opts := []auth.ManagerOption{
		auth.WithSessionStore(store),
		auth.WithCLITokenSource(auth.NewAzureCLI()),
		auth.WithLogger(rt.log),
	}
	if rt.cfg != nil && rt.cfg.Authority != "" {
		opts = append(opts, auth.WithAuthority(rt.cfg.Authority))
	}
	if rt.cfg != nil && rt.cfg.ClientID != "" {
		opts = append(opts, auth.WithClientID(rt.cfg.ClientID))
	}
	manager, err := auth.NewManager(opts...)
	if err != nil {
		return nil, err
	}
	if rt.tenantOverride != "" {
		manager.SetTenant(rt.tenantOverride)
	}
	rt.manager = manager
	return rt.manager, nil
}

// Client lazily builds the HTTP client.
func (rt *runtimeState) Client() (*client.Client, error) {
	if rt.apic != nil {
		return rt.apic, nil
	}
	apic, err := client.New(client.WithLogger(rt.log))
	if err != nil {
		return nil, err
	}
	rt.apic = apic
	return rt.apic, nil
}

// Audit lazily opens the local audit log.
func (rt *runtimeState) Audit() (*audit.Logger, error) {
	if rt.auditor != nil {
		return rt.auditor, nil
	}
	auditor, err := audit.New(config.DefaultAuditDir())
	if err != nil {
		return nil, err
	}
	rt.auditor = auditor
	return rt.auditor, nil
}

// token mints an access token for the audience via the manager.
func (rt *runtimeState) token(ctx context.Context, audience auth.Audience) (string, error) {
	manager, err := rt.Manager()
	if err != nil {
		return "", err
	}
	return manager.Token(ctx, audience)
}

// record writes an audit entry, best effort.
func (rt *runtimeState) record(vaultName, action, itemType, itemName, result, details string) {
	auditor, err := rt.Audit()
	if err != nil {
		rt.log.Debug("audit log unavailable", zap.Error(err))
		return
	}
	auditor.Record(vaultName, action, itemType, itemName, result, details)
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
