package ttyguard

import "testing"

func TestShouldSuppress(t *testing.T) {
	tests := []struct {
		name string
		args []string
		test bool
		want bool
	}{
		{"test mode", []string{"explore"}, true, true},
		{"spec", []string{"spec", "-e", "World"}, false, true},
		{"options after flags", []string{"--dataset", "x.csv", "options"}, false, true},
		{"dataset named spec", []string{"--dataset=spec", "serve"}, false, false},
		{"summary json", []string{"summary", "--json"}, false, true},
		{"faq markdown", []string{"faq", "--markdown"}, false, true},
		{"help", []string{"--help"}, false, true},
		{"explore", []string{"explore", "-e", "Italy"}, false, false},
		{"serve", []string{"serve"}, false, false},
		{"none", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSuppress(tt.args, tt.test); got != tt.want {
				t.Errorf("ShouldSuppress(%v, %v) = %v, want %v", tt.args, tt.test, got, tt.want)
			}
		})
	}
}
