// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package httpfx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/gauntlet/model"
	"github.com/choria-io/gauntlet/model/modelmocks"
)

func TestHttpProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fixtures/HTTP")
}

var _ = Describe("HTTP Provider", func() {
	var (
		mockctl    *gomock.Controller
		logger     *modelmocks.MockLogger
		provider   *Provider
		server     *httptest.Server
		properties *model.FixtureSetProperties
		body       []byte
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		logger = modelmocks.NewMockLogger(mockctl)
		logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
		logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

		body = []byte("not really a tarball but good enough")

		mux := http.NewServeMux()
		mux.HandleFunc("/fixtures/test_data.tar.gz", func(w http.ResponseWriter, r *http.Request) {
			if user, pass, ok := r.BasicAuth(); ok {
				if user != "qa" || pass != "s3cret" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
			}

			if r.Header.Get("X-Test-Token") == "denied" {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
			if r.Method == http.MethodHead {
				return
			}

			w.Write(body)
		})
		mux.HandleFunc("/fixtures/sizeless.tar.gz", func(w http.ResponseWriter, r *http.Request) {
			// chunked response, no Content-Length
			w.(http.Flusher).Flush()
			w.Write(body)
		})
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)

		var err error
		provider, err = NewHttpProvider(logger, modelmocks.NewMockCommandRunner(mockctl))
		Expect(err).ToNot(HaveOccurred())

		properties = &model.FixtureSetProperties{
			Name:        "asr",
			ArchiveName: "test_data.tar.gz",
			Url:         server.URL + "/fixtures/test_data.tar.gz",
			DataDir:     GinkgoT().TempDir(),
		}
	})

	Describe("RemoteSize", func() {
		It("Should report the Content-Length without fetching the body", func(ctx context.Context) {
			size, err := provider.RemoteSize(ctx, properties, logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(size).To(Equal(int64(len(body))))
		})

		It("Should fail when the server reports no size", func(ctx context.Context) {
			properties.Url = server.URL + "/fixtures/sizeless.tar.gz"

			size, err := provider.RemoteSize(ctx, properties, logger)
			Expect(err).To(MatchError(ContainSubstring("no Content-Length")))
			Expect(size).To(Equal(model.SizeUnknown))
		})

		It("Should fail on error statuses", func(ctx context.Context) {
			properties.Url = server.URL + "/missing.tar.gz"

			_, err := provider.RemoteSize(ctx, properties, logger)
			Expect(err).To(MatchError(ContainSubstring("status 404")))
		})

		It("Should send configured headers", func(ctx context.Context) {
			properties.Headers = map[string]string{"X-Test-Token": "denied"}

			_, err := provider.RemoteSize(ctx, properties, logger)
			Expect(err).To(MatchError(ContainSubstring("status 403")))
		})
	})

	Describe("Download", func() {
		It("Should store the archive at the archive path", func(ctx context.Context) {
			copied, err := provider.Download(ctx, properties, logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(copied).To(Equal(int64(len(body))))

			stored, err := os.ReadFile(properties.ArchivePath())
			Expect(err).ToNot(HaveOccurred())
			Expect(stored).To(Equal(body))
		})

		It("Should not leave temporary files behind", func(ctx context.Context) {
			_, err := provider.Download(ctx, properties, logger)
			Expect(err).ToNot(HaveOccurred())

			entries, err := os.ReadDir(properties.DataDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal("test_data.tar.gz"))
		})

		It("Should create the data directory when missing", func(ctx context.Context) {
			properties.DataDir = filepath.Join(properties.DataDir, "nested", "data")

			_, err := provider.Download(ctx, properties, logger)
			Expect(err).ToNot(HaveOccurred())
			Expect(properties.ArchivePath()).To(BeAnExistingFile())
		})

		It("Should use basic auth credentials", func(ctx context.Context) {
			properties.Username = "qa"
			properties.Password = "wrong"

			_, err := provider.Download(ctx, properties, logger)
			Expect(err).To(MatchError(ContainSubstring("status 403")))

			properties.Password = "s3cret"
			_, err = provider.Download(ctx, properties, logger)
			Expect(err).ToNot(HaveOccurred())
		})

		It("Should fail on error statuses", func(ctx context.Context) {
			properties.Url = server.URL + "/missing.tar.gz"

			_, err := provider.Download(ctx, properties, logger)
			Expect(err).To(MatchError(ContainSubstring("status 404")))
		})
	})
})
