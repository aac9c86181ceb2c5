// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [emulator.TokenProvider] interface.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDClaims represents the payload embedded inside an issued ID token.
//
// # Why custom claims?
//
// By embedding the UID, Email, and Role directly inside the token, the
// client can render its signed-in state (whoami) WITHOUT an extra round
// trip, exactly as the vendor SDK does with its ID tokens.
type IDClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the token payload small.
	UID   string `json:"uid"`
	Email string `json:"eml"`
	Role  string `json:"rol"`
}

// TokenService handles generation and verification of ID tokens using HS256.
//
// # Why HS256?
//
// The emulator is a single-process development stand-in. A shared secret
// avoids shipping key files for local use; the real backend signs with its
// own keys and the client never verifies signatures itself.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService from a signing secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// GenerateIDToken creates a new signed ID token for an account.
func (service *TokenService) GenerateIDToken(uid, email, role string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := IDClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UID:   uid,
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of an ID token string.
func (service *TokenService) VerifyToken(tokenString string) (*IDClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IDClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*IDClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// DecodeUnverified extracts the claims of a token WITHOUT verifying its
// signature. The client uses this to render token contents locally; the
// token remains opaque for all trust decisions, which stay server-side.
func DecodeUnverified(tokenString string) (*IDClaims, error) {
	claims := &IDClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("sec: cannot decode token: %w", err)
	}
	return claims, nil
}
