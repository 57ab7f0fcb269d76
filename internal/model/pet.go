package model

import "time"

// PetProfile is a saved pet record belonging to a registered user.
type PetProfile struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Name      string     `db:"name"`
	Type      string     `db:"type"`
	Gender    string     `db:"gender"`
	BirthDate *time.Time `db:"birth_date"`
	Age       *int       `db:"age"`
	OwnerName string     `db:"owner_name"`
	Phone     string     `db:"phone"`
	IsDefault bool       `db:"is_default"`
	CreatedAt time.Time  `db:"created_at"`
}

// AgeAt returns the pet's age in years: the explicit age when recorded,
// otherwise derived from the birth date. Zero with false when neither is
// known.
func (p *PetProfile) AgeAt(now time.Time) (int, bool) {
	if p.Age != nil {
		return *p.Age, true
	}
	if p.BirthDate == nil {
		return 0, false
	}
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, true
}

// PetSnapshot is the pet/owner data frozen onto a reservation at booking
// time.
type PetSnapshot struct {
	OwnerName  string
	OwnerPhone string
	PetName    string
	PetType    string
	PetAge     int
	PetAgeSet  bool
	PetGender  string
}

// MergeProfile fills the snapshot's empty fields from a saved pet profile.
// Request-supplied values always win over profile values.
func (s PetSnapshot) MergeProfile(p *PetProfile, now time.Time) PetSnapshot {
	if p == nil {
		return s
	}
	if s.OwnerName == "" {
		s.OwnerName = p.OwnerName
	}
	if s.OwnerPhone == "" {
		s.OwnerPhone = p.Phone
	}
	if s.PetName == "" {
		s.PetName = p.Name
	}
	if s.PetType == "" {
		s.PetType = p.Type
	}
	if s.PetGender == "" {
		s.PetGender = p.Gender
	}
	if !s.PetAgeSet {
		if age, ok := p.AgeAt(now); ok {
			s.PetAge = age
			s.PetAgeSet = true
		}
	}
	return s
}

// MissingFields lists every required snapshot field that is still empty.
func (s PetSnapshot) MissingFields() []string {
	var missing []string
	if s.OwnerName == "" {
		missing = append(missing, "ownerName")
	}
	if s.OwnerPhone == "" {
		missing = append(missing, "ownerPhone")
	}
	if s.PetName == "" {
		missing = append(missing, "petName")
	}
	if s.PetType == "" {
		missing = append(missing, "petType")
	}
	if !s.PetAgeSet {
		missing = append(missing, "petAge")
	}
	if s.PetGender == "" {
		missing = append(missing, "petGender")
	}
	return missing
}
