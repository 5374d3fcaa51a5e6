package flagx

import (
	"reflect"
	"testing"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-b", "vault", "-z", "x"},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{"-b", "vault"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--bucket=vault", "-z", "x"},
			allowedFlags: []string{"-b", "--bucket"},
			want:         []string{"--bucket=vault"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-b"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-b"},
			allowedFlags: []string{"-b"},
			want:         []string{"-b"},
		},
		{
			name:         "do not treat next dash-starting token as value",
			args:         []string{"-b", "-notvalue"},
			allowedFlags: []string{"-b"},
			want:         []string{"-b"},
		},
		{
			name:         "multiple allowed flags kept in order",
			args:         []string{"-a", "localhost:8080", "-b", "vault", "--other", "x"},
			allowedFlags: []string{"-a", "-b"},
			want:         []string{"-a", "localhost:8080", "-b", "vault"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-b"},
			want:         []string{},
		},
		{
			name:         "repeated allowed flag preserved",
			args:         []string{"-b", "one", "-b", "two"},
			allowedFlags: []string{"-b"},
			want:         []string{"-b", "one", "-b", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
