package services

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "services-test-secret")
	os.Exit(m.Run())
}
