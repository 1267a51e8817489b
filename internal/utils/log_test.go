package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	tests := []struct {
		in   string
		ok   bool
		want logrus.Level
	}{
		{"debug", true, logrus.DebugLevel},
		{" WARN ", true, logrus.WarnLevel},
		{"warning", true, logrus.WarnLevel},
		{"error", true, logrus.ErrorLevel},
		{"verbose", false, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		if got := SetLogLevel(tt.in); got != tt.ok {
			t.Errorf("SetLogLevel(%q) = %v, want %v", tt.in, got, tt.ok)
		}
		if Log.GetLevel() != tt.want {
			t.Errorf("after %q level = %v, want %v", tt.in, Log.GetLevel(), tt.want)
		}
	}
}
