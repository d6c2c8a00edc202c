// Package models defines the directory API data model for dirkit
package models

// UserName holds the structured name of a directory user.
type UserName struct {
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
	FullName   string `json:"fullName,omitempty"`
}

// User represents a directory user account.
type User struct {
	ID           string    `json:"id,omitempty"`
	PrimaryEmail string    `json:"primaryEmail,omitempty"`
	Name         *UserName `json:"name,omitempty"`
	Password     string    `json:"password,omitempty"`
	Suspended    bool      `json:"suspended,omitempty"`
	OrgUnitPath  string    `json:"orgUnitPath,omitempty"`
	IsAdmin      bool      `json:"isAdmin,omitempty"`
	Aliases      []string  `json:"aliases,omitempty"`
}

// Group represents a directory group.
type Group struct {
	ID                 string `json:"id,omitempty"`
	Email              string `json:"email,omitempty"`
	Name               string `json:"name,omitempty"`
	Description        string `json:"description,omitempty"`
	DirectMembersCount string `json:"directMembersCount,omitempty"`
}

// Alias represents a single email alias attached to a user.
type Alias struct {
	ID    string `json:"id,omitempty"`
	Alias string `json:"alias,omitempty"`
}
