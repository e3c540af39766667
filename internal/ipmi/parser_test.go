package ipmi

import (
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Fields
		wantOK bool
	}{
		{
			name:   "full data row",
			line:   "CPU1 Temp        | 45.000     | degrees C  | ok    | 3.000     | 8.000",
			want:   Fields{Name: "CPU1 Temp", Value: "45.000", Unit: "degrees C", Status: "ok"},
			wantOK: true,
		},
		{
			name:   "three columns only",
			line:   "Fan1 | 4200 | RPM",
			want:   Fields{Name: "Fan1", Value: "4200", Unit: "RPM"},
			wantOK: true,
		},
		{
			name:   "no separator",
			line:   "ipmitool: some banner text",
			wantOK: false,
		},
		{
			name:   "blank line",
			line:   "",
			wantOK: false,
		},
		{
			name:   "too few columns",
			line:   "CPU1 Temp | 45.000",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseOutput(t *testing.T) {
	output := []byte(`CPU1 Temp        | 45.000     | degrees C  | ok    | na        | 3.000
CPU2 Temp        | na         | degrees C  | ok    | na        | 3.000
Fan1             | 4200.000   | RPM        | ok    | na        | 200.000
PS1 Voltage      | 12.100     | Volts      | ok    | na        | 10.000
Weird Sensor     | 0x0        | discrete   | 0x0180| na        | na
                 | 1.000      | Volts      | ok    | na        | na
`)

	readings := ParseOutput(output, nil)

	if len(readings) != 4 {
		t.Fatalf("ParseOutput returned %d readings, want 4: %+v", len(readings), readings)
	}

	first := readings[0]
	if first.Name != "CPU1 Temp" {
		t.Errorf("readings[0].Name = %q, want %q", first.Name, "CPU1 Temp")
	}
	if !first.HasValue() || *first.Value != 45.0 {
		t.Errorf("readings[0].Value = %v, want 45.0", first.Value)
	}
	if first.Unit != UnitTemperature {
		t.Errorf("readings[0].Unit = %v, want temperature", first.Unit)
	}

	// "na" value keeps the row but drops the value.
	second := readings[1]
	if second.Name != "CPU2 Temp" {
		t.Errorf("readings[1].Name = %q, want %q", second.Name, "CPU2 Temp")
	}
	if second.HasValue() {
		t.Errorf("readings[1] should have no value, got %v", *second.Value)
	}
	if second.Unit != UnitTemperature {
		t.Errorf("readings[1].Unit = %v, want temperature", second.Unit)
	}
}

func TestParseOutput_PreservesInputOrder(t *testing.T) {
	output := []byte(`B Sensor | 1.000 | Volts | ok
A Sensor | 2.000 | Volts | ok
`)

	readings := ParseOutput(output, nil)
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}
	if readings[0].Name != "B Sensor" || readings[1].Name != "A Sensor" {
		t.Errorf("order = [%q, %q], want input order", readings[0].Name, readings[1].Name)
	}
}

func TestBuildReading_Sentinels(t *testing.T) {
	tests := []struct {
		value string
	}{
		{"na"},
		{"NA"},
		{"no reading"},
		{"disabled"},
		{""},
		{"0x0180"}, // non-numeric, treated as no reading
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r, ok := buildReading(Fields{Name: "Fan1", Value: tt.value, Unit: "RPM", Status: "ok"})
			if !ok {
				t.Fatalf("buildReading rejected row with value %q", tt.value)
			}
			if r.HasValue() {
				t.Errorf("value %q should yield no reading, got %v", tt.value, *r.Value)
			}
		})
	}
}

func TestBuildReading_RejectsEmptyName(t *testing.T) {
	if _, ok := buildReading(Fields{Name: "", Value: "1.000", Unit: "Volts", Status: "ok"}); ok {
		t.Error("buildReading accepted a row with an empty name")
	}
}

func TestBuildReading_StatusFilter(t *testing.T) {
	tests := []struct {
		status string
		wantOK bool
	}{
		{"ok", true},
		{"OK", true},
		{"ns", true},
		{"nr", true},
		{"nc", true},
		{"cr", true},
		{"", true}, // three-column output has no status
		{"0x0180", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			_, ok := buildReading(Fields{Name: "S", Value: "1.0", Unit: "Volts", Status: tt.status})
			if ok != tt.wantOK {
				t.Errorf("status %q: ok = %v, want %v", tt.status, ok, tt.wantOK)
			}
		})
	}
}

func TestBuildReading_NegativeAndSignedValues(t *testing.T) {
	r, ok := buildReading(Fields{Name: "Ambient", Value: "-3.500", Unit: "degrees C", Status: "ok"})
	if !ok || !r.HasValue() {
		t.Fatal("signed value rejected")
	}
	if *r.Value != -3.5 {
		t.Errorf("value = %v, want -3.5", *r.Value)
	}
}
