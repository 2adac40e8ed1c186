package models

// ProfileRequest is the payload for POST /api/v1/profile.
type ProfileRequest struct {
	// Name is the company's business name. Required.
	Name string `json:"name" binding:"required"`

	// Address is the company's street address, used to sharpen search
	// queries and verification judgments.
	Address string `json:"address,omitempty"`

	// Phone is the company's phone number, passed through to the profile
	// context.
	Phone string `json:"phone,omitempty"`

	// Website, when set, skips website discovery and profiles this URL
	// directly.
	Website string `json:"website,omitempty" binding:"omitempty,url"`

	// MaxAge enables the response cache: a cached profile younger than
	// this many seconds is returned without re-profiling. 0 (default)
	// bypasses the cache.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// OwnerInfo requests LLM-backed owner/founder extraction for this
	// company. Default: false.
	OwnerInfo bool `json:"owner_info,omitempty"`
}

// Company converts the request into the company identity context.
func (r *ProfileRequest) Company() Company {
	return Company{Name: r.Name, Address: r.Address, Phone: r.Phone}
}
