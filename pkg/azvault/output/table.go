package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/azvault/azvault/pkg/azvault/audit"
	"github.com/azvault/azvault/pkg/azvault/client"
)

func WriteTenantTable(w io.Writer, tenants []client.Tenant) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TENANT_ID\tDISPLAY_NAME")
	for _, t := range tenants {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", t.TenantID, deref(t.DisplayName))
	}
	_ = tw.Flush()
}

func WriteSubscriptionTable(w io.Writer, subs []client.Subscription) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SUBSCRIPTION_ID\tDISPLAY_NAME\tSTATE\tTENANT_ID")
	for _, s := range subs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.SubscriptionID, s.DisplayName, s.State, s.TenantID)
	}
	_ = tw.Flush()
}

func WriteVaultTable(w io.Writer, vaults []client.KeyVaultInfo) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tLOCATION\tRESOURCE_GROUP\tVAULT_URI\tSOFT_DELETE")
	for _, v := range vaults {
		softDelete := "-"
		if v.SoftDeleteEnabled != nil {
			softDelete = fmt.Sprintf("%v", *v.SoftDeleteEnabled)
		}
		rg := v.ResourceGroup
		if rg == "" {
			rg = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			v.Name, v.Location, rg, v.VaultURI, softDelete)
	}
	_ = tw.Flush()
}

func WriteSecretTable(w io.Writer, secrets []client.SecretItem) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tENABLED\tCONTENT_TYPE\tUPDATED\tEXPIRES")
	for _, s := range secrets {
		_, _ = fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%s\n",
			s.Name, s.Enabled, deref(s.ContentType), deref(s.Updated), deref(s.Expires))
	}
	_ = tw.Flush()
}

func WriteKeyTable(w io.Writer, keys []client.KeyItem) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tTYPE\tENABLED\tOPERATIONS\tUPDATED")
	for _, k := range keys {
		ops := "-"
		if len(k.KeyOps) > 0 {
			ops = fmt.Sprintf("%d", len(k.KeyOps))
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\n",
			k.Name, deref(k.KeyType), k.Enabled, ops, deref(k.Updated))
	}
	_ = tw.Flush()
}

func WriteCertificateTable(w io.Writer, certs []client.CertificateItem) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tENABLED\tSUBJECT\tTHUMBPRINT\tEXPIRES")
	for _, c := range certs {
		_, _ = fmt.Fprintf(tw, "%s\t%v\t%s\t%s\t%s\n",
			c.Name, c.Enabled, deref(c.Subject), deref(c.Thumbprint), deref(c.Expires))
	}
	_ = tw.Flush()
}

func WriteAuditTable(w io.Writer, entries []audit.Entry) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIMESTAMP\tACTION\tVAULT\tITEM\tRESULT")
	for _, e := range entries {
		item := e.ItemName
		if item == "" {
			item = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp, e.Action, e.VaultName, item, e.Result)
	}
	_ = tw.Flush()
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
