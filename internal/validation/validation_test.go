package validation

import "testing"

func TestEmail(t *testing.T) {
	got, err := Email("  Partner@Example.com ")
	if err != nil {
		t.Fatalf("Email failed: %v", err)
	}
	if got != "partner@example.com" {
		t.Errorf("Email = %q", got)
	}

	for _, bad := range []string{"", "not-an-email", "Name <a@b.c>"} {
		if _, err := Email(bad); err == nil {
			t.Errorf("Email(%q): expected error", bad)
		}
	}
}

func TestText(t *testing.T) {
	if _, err := Text("answer", "   ", 10); err == nil {
		t.Error("expected error for blank text")
	}
	if _, err := Text("answer", "ééééééééééé", 10); err == nil {
		t.Error("expected error for 11 runes with max 10")
	}
	got, err := Text("answer", " éé ", 2)
	if err != nil || got != "éé" {
		t.Errorf("Text = %q, %v", got, err)
	}
}

func TestEmoji(t *testing.T) {
	for _, ok := range []string{"💛", "👍🏽", "🇩🇪"} {
		if _, err := Emoji(ok); err != nil {
			t.Errorf("Emoji(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a b", "this is far too long for an emoji"} {
		if _, err := Emoji(bad); err == nil {
			t.Errorf("Emoji(%q): expected error", bad)
		}
	}
}

func TestPhotoKey(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{"rooms/r1/beach.jpg", true},
		{"rooms/r1/sub/IMG_1.HEIC", true},
		{"rooms/r2/beach.jpg", false},
		{"rooms/r1/../r2/beach.jpg", false},
		{"rooms/r1/notes.pdf", false},
	}
	for _, tt := range tests {
		err := PhotoKey("r1", tt.key)
		if (err == nil) != tt.ok {
			t.Errorf("PhotoKey(%q) error = %v, want ok=%v", tt.key, err, tt.ok)
		}
	}
}
