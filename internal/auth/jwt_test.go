package auth

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	pair, err := MintTokens("u-1", "ana.maria", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	c, err := ParseKind(pair.AccessToken, "secret", KindAccess)
	if err != nil {
		t.Fatalf("ParseKind(access) error = %v", err)
	}
	if c.UserID != "u-1" || c.Username != "ana.maria" {
		t.Errorf("claims = %+v", c)
	}

	if _, err := ParseKind(pair.RefreshToken, "secret", KindAccess); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := ParseKind(pair.RefreshToken, "secret", KindRefresh); err != nil {
		t.Errorf("ParseKind(refresh) error = %v", err)
	}
}

func TestParseClaims_Rejects(t *testing.T) {
	pair, err := MintTokens("u-1", "ana", "secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	if _, err := ParseClaims(pair.AccessToken, "secret"); err == nil {
		t.Error("expired token accepted")
	}
	if _, err := ParseClaims(pair.RefreshToken, "other"); err == nil {
		t.Error("token with wrong secret accepted")
	}
	if _, err := ParseClaims("not-a-token", "secret"); err == nil {
		t.Error("garbage accepted")
	}
}
