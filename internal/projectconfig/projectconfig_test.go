package projectconfig

import (
	"testing"
)

func TestFromBytesValid(t *testing.T) {
	tests := map[string]struct {
		yaml string
		want Config
	}{
		"explicit port": {
			yaml: "builder: dockerfile\napp: demo\nport: 3000\n",
			want: Config{Builder: BuilderDockerfile, App: "demo", Port: 3000},
		},
		"default port": {
			yaml: "builder: dockerfile\napp: demo\n",
			want: Config{Builder: BuilderDockerfile, App: "demo", Port: DefaultPort},
		},
		"case-insensitive builder": {
			yaml: "builder: DockerFile\napp: demo\n",
			want: Config{Builder: BuilderDockerfile, App: "demo", Port: DefaultPort},
		},
		"go builder": {
			yaml: "builder: go\napp: demo\n",
			want: Config{Builder: BuilderGo, App: "demo", Port: DefaultPort},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := FromBytes([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("FromBytes: unexpected error: %v", err)
			}
			if *got != tc.want {
				t.Fatalf("FromBytes = %+v, want %+v", *got, tc.want)
			}
		})
	}
}

func TestFromBytesInvalid(t *testing.T) {
	tests := map[string]string{
		"missing builder":    "app: demo\n",
		"missing app":        "builder: dockerfile\n",
		"unknown builder":    "builder: rust\napp: demo\n",
		"port zero":          "builder: dockerfile\napp: demo\nport: 0\n",
		"port too large":     "builder: dockerfile\napp: demo\nport: 70000\n",
		"port negative":      "builder: dockerfile\napp: demo\nport: -1\n",
		"not yaml at all":    "::: not yaml :::",
		"empty app string":   "builder: dockerfile\napp: \"\"\n",
		"blank builder name": "builder: \" \"\napp: demo\n",
	}

	for name, yamlText := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromBytes([]byte(yamlText)); err == nil {
				t.Fatalf("FromBytes(%q): expected an error, got nil", yamlText)
			}
		})
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile("/nonexistent/nimble.yaml"); err == nil {
		t.Fatal("FromFile: expected an error for a missing file, got nil")
	}
}
