package main

import "testing"

func TestGetConfigPathDefault(t *testing.T) {
	t.Setenv("HOSTLINK_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	t.Setenv("HOSTLINK_CONFIG", "/etc/hostlink/config.yaml")
	if got := getConfigPath(); got != "/etc/hostlink/config.yaml" {
		t.Errorf("getConfigPath() = %q", got)
	}
}
