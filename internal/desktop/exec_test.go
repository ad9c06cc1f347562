package desktop

import (
	"errors"
	"reflect"
	"testing"
)

func TestExpandExec(t *testing.T) {
	tests := []struct {
		name     string
		template string
		extra    []string
		want     []string
		wantErr  error
	}{
		{
			name:     "plain command",
			template: "firefox",
			want:     []string{"firefox"},
		},
		{
			name:     "field codes removed without extra args",
			template: "firefox %u",
			want:     []string{"firefox"},
		},
		{
			name:     "field codes substituted with extra args",
			template: "firefox %u",
			extra:    []string{"https://example.com"},
			want:     []string{"firefox", "https://example.com"},
		},
		{
			name:     "informational codes always removed",
			template: "gimp %U %i %c %k",
			want:     []string{"gimp"},
		},
		{
			name:     "quoted argument with spaces",
			template: `editor "My File.txt" --wait`,
			want:     []string{"editor", "My File.txt", "--wait"},
		},
		{
			name:     "percent escape",
			template: "run --ratio=50%% input",
			want:     []string{"run", "--ratio=50%", "input"},
		},
		{
			name:     "embedded field code stripped",
			template: "viewer --file=%f",
			want:     []string{"viewer", "--file="},
		},
		{
			name:     "only field codes",
			template: "%F",
			wantErr:  ErrEmptyCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandExec(tt.template, tt.extra)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExpandExec() error = %v; want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandExec() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandExec() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestExpandExec_UnterminatedQuote(t *testing.T) {
	_, err := ExpandExec(`editor "unclosed`, nil)
	if err == nil {
		t.Fatal("ExpandExec() should fail on an unterminated quote")
	}
}

func TestBuildCommand_TerminalWrap(t *testing.T) {
	entry := &Entry{ID: "htop", Exec: "htop", Terminal: true}

	argv, err := BuildCommand(entry, "x-terminal-emulator", nil)
	if err != nil {
		t.Fatalf("BuildCommand() failed: %v", err)
	}

	want := []string{"x-terminal-emulator", "-e", "htop"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("BuildCommand() = %v; want %v", argv, want)
	}
}

func TestBuildCommand_NoWrapForGUIEntry(t *testing.T) {
	entry := &Entry{ID: "firefox", Exec: "firefox %u", Terminal: false}

	argv, err := BuildCommand(entry, "x-terminal-emulator", nil)
	if err != nil {
		t.Fatalf("BuildCommand() failed: %v", err)
	}

	want := []string{"firefox"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("BuildCommand() = %v; want %v", argv, want)
	}
}
