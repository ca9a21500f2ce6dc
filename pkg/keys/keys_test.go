package keys

import "testing"

func TestTrashKeyRoundTrip(t *testing.T) {
	original := "identity/u1/front.jpg"
	trashed := TrashKey(original)
	if trashed != "trash/identity/u1/front.jpg" {
		t.Fatalf("unexpected trash key: %s", trashed)
	}

	back, ok := OriginalKey(trashed)
	if !ok {
		t.Fatalf("OriginalKey did not recognize %s", trashed)
	}
	if back != original {
		t.Fatalf("round trip gave %s, want %s", back, original)
	}
}

func TestOriginalKeyRejectsNonTrash(t *testing.T) {
	key := "identity/u1/front.jpg"
	got, ok := OriginalKey(key)
	if ok {
		t.Fatalf("expected non-trash key to be rejected")
	}
	if got != key {
		t.Fatalf("non-trash key mutated to %s", got)
	}
}

func TestUserTrashPrefix(t *testing.T) {
	if got := UserTrashPrefix("u1"); got != "trash/identity/u1/" {
		t.Fatalf("unexpected user trash prefix: %s", got)
	}
}

func TestIdentityKey(t *testing.T) {
	if got := IdentityKey("u1", "front.jpg"); got != "identity/u1/front.jpg" {
		t.Fatalf("unexpected identity key: %s", got)
	}
}

func TestShowcaseKey(t *testing.T) {
	if got := ShowcaseKey("v42"); got != "showcase/v42.mp4" {
		t.Fatalf("unexpected showcase key: %s", got)
	}
}

func TestIsPublic(t *testing.T) {
	if !IsPublic("public/assets/logo.png") {
		t.Fatalf("public asset not recognized")
	}
	if IsPublic("identity/u1/front.jpg") {
		t.Fatalf("identity key wrongly public")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		key     string
		wantErr bool
	}{
		{"identity/u1/front.jpg", false},
		{"showcase/v1.mp4", false},
		{"", true},
		{"/leading/slash", true},
		{"identity/../secrets", true},
	}
	for _, tc := range cases {
		err := Validate(tc.key)
		if tc.wantErr && err == nil {
			t.Fatalf("Validate(%q) expected error", tc.key)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("Validate(%q) unexpected error: %v", tc.key, err)
		}
	}
}
