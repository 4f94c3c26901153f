package models

// Team - участник турниров; Rating используется для посева.
type Team struct {
	ID        int     `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	ShortName *string `json:"short_name,omitempty" db:"short_name"`
	LogoURL   *string `json:"logo_url,omitempty" db:"logo_url"`
	Rating    float64 `json:"rating" db:"rating"`
	Region    *string `json:"region,omitempty" db:"region"`
}
