// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package facts

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/gauntlet/model/modelmocks"
)

func TestFacts(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal/Facts")
}

var _ = Describe("StandardFacts", func() {
	It("Should gather the fact categories used by gates", func() {
		mockctl := gomock.NewController(GinkgoT())
		logger := modelmocks.NewMockLogger(mockctl)
		logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
		logger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		facts, err := StandardFacts(ctx, logger)
		Expect(err).ToNot(HaveOccurred())
		Expect(facts).To(HaveKey("host"))
		Expect(facts).To(HaveKey("cpu"))
		Expect(facts).To(HaveKey("memory"))

		accel, ok := facts["accelerator"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(accel).To(HaveKey("available"))
		Expect(accel).To(HaveKey("kind"))
	})
})
