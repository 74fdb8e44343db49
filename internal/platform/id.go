package platform

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

const (
	// SlugPrefix marks task definition families owned by the controller.
	SlugPrefix = "ctfd-"
	// SecurityGroupPrefix marks security groups created for machines.
	SecurityGroupPrefix = "ctf-sg-"
)

func NewID() string {
	return uuid.New().String()
}

// NewSlug returns a fresh task definition family name.
func NewSlug() string {
	return SlugPrefix + randomHex(16)
}

// NewSecurityGroupName returns a fresh security group name.
func NewSecurityGroupName() string {
	return SecurityGroupPrefix + randomHex(8)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return hex.EncodeToString(b)
}
