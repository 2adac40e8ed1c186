package models

// Company identifies a business whose web presence is being profiled.
// Address and Phone are optional context used only for search queries and
// verification judgments, never by the extraction rules themselves.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Page is a single fetched HTML page. Immutable after construction.
type Page struct {
	// URL is the final URL after redirects.
	URL string

	// HTML is the raw markup as fetched.
	HTML string

	// VisibleText is the rendered text content with scripts, styles and
	// markup stripped.
	VisibleText string
}

// Extraction is what the engine pulls out of one site. Every populated
// URL field is absolute; Emails carries at most one address.
type Extraction struct {
	Emails         []string `json:"emails"`
	ContactFormURL string   `json:"contact_form,omitempty"`
	SocialURL      string   `json:"social_url,omitempty"`
	LogoURL        string   `json:"logo_url,omitempty"`
}

// Profile is the assembled web presence for one company.
type Profile struct {
	Website      string   `json:"website,omitempty"`
	Emails       []string `json:"emails,omitempty"`
	ContactForm  string   `json:"contact_form,omitempty"`
	FacebookPage string   `json:"facebook_page,omitempty"`
	LogoURL      string   `json:"logo_url,omitempty"`
	OwnerInfo    string   `json:"owner_info,omitempty"`
}
