package security

import (
	"strings"
	"testing"
)

var testParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("s3cret!", testParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$t=1,m=8192,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}

	ok, err := VerifyPassword("s3cret!", encoded)
	if err != nil || !ok {
		t.Fatalf("verify correct password = %v, %v", ok, err)
	}
	ok, err = VerifyPassword("S3cret!", encoded)
	if err != nil || ok {
		t.Fatalf("verify wrong password = %v, %v", ok, err)
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	a, _ := HashPassword("same", testParams)
	b, _ := HashPassword("same", testParams)
	if a == b {
		t.Fatal("expected distinct hashes for distinct salts")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, in := range []string{"", "plain", "$2a$10$bcrypthashvalue", "$argon2id$v=19$t=1$x$y"} {
		if ok, err := VerifyPassword("pw", in); err == nil || ok {
			t.Fatalf("VerifyPassword(%q) = %v, %v; want error", in, ok, err)
		}
	}
}
