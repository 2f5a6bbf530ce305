package heattransfer_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHeattransfer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Heattransfer Suite")
}
