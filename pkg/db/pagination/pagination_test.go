package pagination

import "testing"

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "12345"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cursor, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cursor.ID != "12345" {
		t.Fatalf("got %q, want 12345", cursor.ID)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	if _, err := DecodeCursor("not-base64!!"); err == nil {
		t.Fatal("want error for invalid token")
	}
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ id string }
	extract := func(r *row) string { return r.id }

	info := BuildCursorPageInfo([]*row{{"a"}, {"b"}, {"c"}}, 2, extract)
	if !info.HasMore {
		t.Fatal("want HasMore with an extra row")
	}
	if info.NextPageToken != "b" {
		t.Fatalf("got %q, want b", info.NextPageToken)
	}

	info = BuildCursorPageInfo([]*row{{"a"}}, 2, extract)
	if info.HasMore {
		t.Fatal("single page should not report more")
	}
	info = BuildCursorPageInfo(nil, 2, extract)
	if info.HasMore {
		t.Fatal("empty page should not report more")
	}
}
