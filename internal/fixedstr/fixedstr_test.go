package fixedstr

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	b, err := WriteResourceName("hello")
	if err != nil {
		t.Fatalf("WriteResourceName: %v", err)
	}
	if len(b) != ResourceNameSize {
		t.Fatalf("len = %d, want %d", len(b), ResourceNameSize)
	}
	if got := Read(b); got != "hello" {
		t.Fatalf("Read = %q, want %q", got, "hello")
	}
}

func TestWriteTooLong(t *testing.T) {
	long := make([]byte, ResourceNameSize)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := Write(string(long), ResourceNameSize); err == nil {
		t.Fatal("expected error for string filling the whole field with no room for a NUL")
	}
}

func TestReadNoNUL(t *testing.T) {
	b := []byte{'a', 'b', 'c'}
	if got := Read(b); got != "abc" {
		t.Fatalf("Read = %q, want %q", got, "abc")
	}
}

func TestEqual(t *testing.T) {
	a, _ := WriteResourceName("x")
	b := make([]byte, ResourceNameSize)
	copy(b, "x")
	b[5] = 0xff // garbage past the logical length must not affect equality
	if !Equal(a, b) {
		t.Fatal("expected fixed strings to compare equal up to their first NUL")
	}
}
