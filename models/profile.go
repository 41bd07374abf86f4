package models

import "time"

// Profile statuses. A freshly committed profile is pending until reviewed.
const (
	ProfileStatusPending  = "pending"
	ProfileStatusActive   = "active"
	ProfileStatusRejected = "rejected"
)

// Profile is the persisted learner/teacher record written at phase 2.
type Profile struct {
	ID         string `bson:"id" json:"id"`
	IdentityID string `bson:"identityId" json:"identityId"`
	Role       Role   `bson:"role" json:"role"`

	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	BirthDate string `bson:"birthDate" json:"birthDate"`
	Gender    string `bson:"gender" json:"gender"`
	Wilaya    string `bson:"wilaya" json:"wilaya"`
	Address   string `bson:"address" json:"address"`
	Phone     string `bson:"phone" json:"phone"`
	Email     string `bson:"email" json:"email"`

	NationalID string `bson:"nationalId" json:"nationalId"`

	// Student fields.
	EducationLevel string `bson:"educationLevel,omitempty" json:"educationLevel,omitempty"`
	Institution    string `bson:"institution,omitempty" json:"institution,omitempty"`

	// Teacher fields.
	HighestDegree string `bson:"highestDegree,omitempty" json:"highestDegree,omitempty"`
	Affiliation   string `bson:"affiliation,omitempty" json:"affiliation,omitempty"`
	Bio           string `bson:"bio,omitempty" json:"bio,omitempty"`
	LinkedIn      string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Website       string `bson:"website,omitempty" json:"website,omitempty"`

	// Documents maps logical field names (nationalIdFront, studentCard, ...)
	// to stored object paths. A field whose upload failed is simply absent.
	Documents map[string]string `bson:"documents,omitempty" json:"documents,omitempty"`

	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Identity is the authentication record created at phase 1. It owns the
// credentials; the profile references it by IdentityID.
type Identity struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Verified     bool      `bson:"verified" json:"verified"`
	TokenHash    string    `bson:"tokenHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
