package raw

import "testing"

func TestConfGet(t *testing.T) {
	t.Setenv("APP_NAME", " circlesync ")
	t.Setenv("LOG_LEVEL", " warn ")

	root := New()
	lg := root.Prefix("LOG_")

	tests := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{name: "root hit", conf: root, key: "APP_NAME", def: "x", want: "circlesync"},
		{name: "prefixed hit", conf: lg, key: "LEVEL", def: "x", want: "warn"},
		{name: "missing returns default", conf: lg, key: "MISSING", def: "defv", want: "defv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfGetBool(t *testing.T) {
	c := New().Prefix("B_")
	t.Setenv("B_T1", "true")
	t.Setenv("B_T2", "1")
	t.Setenv("B_T3", "YES")
	t.Setenv("B_F1", "false")
	t.Setenv("B_F2", "nope")

	for _, k := range []string{"T1", "T2", "T3"} {
		if !c.GetBool(k, false) {
			t.Fatalf("GetBool(%s) = false, want true", k)
		}
	}
	for _, k := range []string{"F1", "F2"} {
		if c.GetBool(k, true) {
			t.Fatalf("GetBool(%s) = true, want false", k)
		}
	}
	if !c.GetBool("MISSING", true) {
		t.Fatalf("GetBool default not used")
	}
}

func TestConfGetInt(t *testing.T) {
	c := New().Prefix("I_")
	t.Setenv("I_OK", " 12 ")
	t.Setenv("I_NEG", "-3")
	t.Setenv("I_BAD", "12x")

	if got := c.GetInt("OK", 0); got != 12 {
		t.Fatalf("GetInt(OK) = %d, want 12", got)
	}
	if got := c.GetInt("NEG", 7); got != 7 {
		t.Fatalf("GetInt(NEG) = %d, want default 7", got)
	}
	if got := c.GetInt("BAD", 7); got != 7 {
		t.Fatalf("GetInt(BAD) = %d, want default 7", got)
	}
	if got := c.GetInt("MISSING", 5); got != 5 {
		t.Fatalf("GetInt(MISSING) = %d, want 5", got)
	}
}
