package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secreto1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("secreto1", hash) {
		t.Fatalf("expected password to verify")
	}
	if Verify("otro", hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestLongEnough(t *testing.T) {
	if LongEnough("12345") {
		t.Fatalf("5 chars is too short")
	}
	if !LongEnough("123456") {
		t.Fatalf("6 chars is enough")
	}
}
