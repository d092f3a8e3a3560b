package recognition

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server     *ghttp.Server
		recognizer *Ollama
		image      []byte
		text       string
		err        error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		image = []byte("png bytes")
		var newErr error
		recognizer, newErr = NewOllama(server.URL()+"/", "llava")
		Expect(newErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = recognizer.Recognize(context.Background(), image)
	})

	When("the model returns a transcription", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					var req ollamaChatRequest
					Expect(decodeJSON(r, &req)).To(Succeed())
					Expect(req.Model).To(Equal("llava"))
					Expect(req.Stream).To(BeFalse())
					Expect(req.Messages).To(HaveLen(1))
					Expect(req.Messages[0].Images).To(ConsistOf(base64.StdEncoding.EncodeToString([]byte("png bytes"))))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nCAFE NERO\nTOTAL 4.50\n```"},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the cleaned transcription", func() {
			Expect(text).To(Equal("CAFE NERO\nTOTAL 4.50"))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns a recognition error", func() {
			var recErr *Error
			Expect(errors.As(err, &recErr)).To(BeTrue())
			Expect(recErr.Engine).To(Equal("ollama"))
			Expect(err.Error()).To(ContainSubstring("model not loaded"))
		})
	})

	When("the API returns malformed JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "{not json"))
		})

		It("returns a recognition error", func() {
			var recErr *Error
			Expect(errors.As(err, &recErr)).To(BeTrue())
		})
	})

	When("the server is unreachable", func() {
		BeforeEach(func() {
			server.Close()
		})

		It("returns a recognition error", func() {
			var recErr *Error
			Expect(errors.As(err, &recErr)).To(BeTrue())
		})
	})
})
