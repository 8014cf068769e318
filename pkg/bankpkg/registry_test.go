package bankpkg

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadEmbedded(t *testing.T) {
	r, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() returned error: %v", err)
	}

	got, ok := r.Lookup("00000000")
	if !ok {
		t.Fatalf(`r.Lookup("00000000") not found`)
	}

	want := Bank{
		ISPB:     "00000000",
		Name:     "BCO DO BRASIL S.A.",
		Code:     1,
		FullName: "Banco do Brasil S.A.",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("r.Lookup mismatch (-want +got):\n%s", diff)
	}

	if _, ok := r.Lookup("99999999"); ok {
		t.Errorf(`r.Lookup("99999999") found, want missing`)
	}
}

func TestAllIsSortedCopy(t *testing.T) {
	r, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() returned error: %v", err)
	}

	all := r.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ISPB >= all[i].ISPB {
			t.Fatalf("All() not sorted at %d: %q >= %q", i, all[i-1].ISPB, all[i].ISPB)
		}
	}

	all[0].Name = "changed"

	if r.All()[0].Name == "changed" {
		t.Errorf("All() exposes internal slice")
	}
}

func TestLoadDuplicate(t *testing.T) {
	data := []byte(`
- ispb: "1"
  name: A
- ispb: "1"
  name: B
`)

	_, err := Load(data)
	if !errors.Is(err, ErrDuplicateISPB) {
		t.Errorf("Load() error=%v, want %v", err, ErrDuplicateISPB)
	}
}
