package types

// PlanType identifies a billing plan. Plans gate the invoice quota and the
// feature set available to a tenant.
type PlanType string

const (
	PlanFree PlanType = "free"
	PlanPro  PlanType = "pro"
)

func (p PlanType) Validate() bool {
	switch p {
	case PlanFree, PlanPro:
		return true
	}
	return false
}

// Feature is a plan-gated capability.
type Feature string

const (
	FeatureCreateInvoices    Feature = "create_invoices"
	FeatureUnlimitedInvoices Feature = "unlimited_invoices"
	FeaturePDFExport         Feature = "pdf_export"
	FeatureEmailInvoices     Feature = "email_invoices"
	FeatureCustomBranding    Feature = "custom_branding"
)
