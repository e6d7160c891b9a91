package club

import "testing"

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	if r.Len() != 3 {
		t.Fatalf("Default().Len() = %d, want 3", r.Len())
	}

	c, ok := r.Lookup("academia_gorila_warszawa")
	if !ok {
		t.Fatal("Lookup(academia_gorila_warszawa) not found")
	}
	if c.Name != "Academia Gorila / Warszawa" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.DisplayName != "Academia Gorila (Warszawa)" {
		t.Errorf("DisplayName = %q", c.DisplayName)
	}

	if _, ok := r.Lookup("unknown_club"); ok {
		t.Error("Lookup(unknown_club) should fail")
	}
}

func TestRegistry_AllIsCopy(t *testing.T) {
	r := Default()
	all := r.All()
	all[0].Name = "mutated"

	c, _ := r.Lookup(all[0].ID)
	if c.Name == "mutated" {
		t.Error("All() exposed internal storage")
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		clubs   []Club
		wantErr bool
	}{
		{"valid", []Club{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, false},
		{"empty id", []Club{{ID: " ", Name: "A"}}, true},
		{"empty name", []Club{{ID: "a"}}, true},
		{"duplicate", []Club{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.clubs...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRegistry() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRegistry_DisplayNameFallback(t *testing.T) {
	r := MustRegistry(Club{ID: "x", Name: "X Team / Kraków"})
	c, _ := r.Lookup("x")
	if c.DisplayName != "X Team / Kraków" {
		t.Errorf("DisplayName = %q, want canonical name", c.DisplayName)
	}
}

func TestParseScheduleType(t *testing.T) {
	tests := []struct {
		in      string
		want    ScheduleType
		wantErr bool
	}{
		{"planned", Planned, false},
		{"real", Real, false},
		{"", "", true},
		{"unknown", "", true},
		{"Planned", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheduleType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScheduleType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseScheduleType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScheduleType_IncludesDay(t *testing.T) {
	live := float64(LiveSharing)
	draft := 1.0

	tests := []struct {
		name    string
		typ     ScheduleType
		sharing *float64
		want    bool
	}{
		{"planned keeps live", Planned, &live, true},
		{"planned keeps draft", Planned, &draft, true},
		{"planned keeps missing", Planned, nil, true},
		{"real keeps live", Real, &live, true},
		{"real drops draft", Real, &draft, false},
		{"real drops missing", Real, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IncludesDay(tt.sharing); got != tt.want {
				t.Errorf("IncludesDay() = %v, want %v", got, tt.want)
			}
		})
	}
}
