package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the persisted token blob. It mirrors the JSON object stored
// at the credential blob path.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Merge overlays the incoming token fields over the last known credential,
// field by field. The provider omits refresh_token on routine refreshes; an
// empty incoming refresh_token keeps the stored one, so the persisted blob
// always holds the most recently known-valid refresh token.
func Merge(old, incoming *Credential) *Credential {
	if old == nil {
		if incoming == nil {
			return nil
		}
		merged := *incoming
		return &merged
	}

	merged := *old
	if incoming == nil {
		return &merged
	}
	if incoming.AccessToken != "" {
		merged.AccessToken = incoming.AccessToken
	}
	if incoming.RefreshToken != "" {
		merged.RefreshToken = incoming.RefreshToken
	}
	if incoming.TokenType != "" {
		merged.TokenType = incoming.TokenType
	}
	if incoming.Scope != "" {
		merged.Scope = incoming.Scope
	}
	if !incoming.Expiry.IsZero() {
		merged.Expiry = incoming.Expiry
	}
	return &merged
}

// Token converts the credential to an oauth2 token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// FromToken converts an oauth2 token to a credential.
func FromToken(t *oauth2.Token) *Credential {
	cred := &Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
	if scope, ok := t.Extra("scope").(string); ok {
		cred.Scope = scope
	}
	return cred
}
