package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-proxy/pkg/logger"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	DescribeTable("should respect the configured level",
		func(level string, enabled, disabled slog.Level) {
			log := logger.New(level, "dev")
			Expect(log.Enabled(ctx, enabled)).To(BeTrue())
			Expect(log.Enabled(ctx, disabled)).To(BeFalse())
		},
		Entry("debug", "debug", slog.LevelDebug, slog.LevelDebug-1),
		Entry("info", "info", slog.LevelInfo, slog.LevelDebug),
		Entry("warn", "warn", slog.LevelWarn, slog.LevelInfo),
		Entry("error", "error", slog.LevelError, slog.LevelWarn),
		Entry("upper case", "WARN", slog.LevelWarn, slog.LevelInfo),
		Entry("invalid falls back to info", "invalid", slog.LevelInfo, slog.LevelDebug),
	)

	It("should write JSON with the environment in prod", func() {
		buf := &bytes.Buffer{}
		log := logger.NewWithWriter(buf, "info", "prod")
		log.Info("reverse proxy listening", slog.String("addr", ":80"))

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("environment", "prod"))
		Expect(record).To(HaveKeyWithValue("addr", ":80"))
		Expect(record).NotTo(HaveKey(slog.SourceKey))
	})

	It("should write text with source locations outside prod", func() {
		buf := &bytes.Buffer{}
		log := logger.NewWithWriter(buf, "info", "dev")
		log.Info("hello")

		Expect(buf.String()).To(ContainSubstring("environment=dev"))
		Expect(buf.String()).To(ContainSubstring("source="))
		Expect(buf.String()).To(ContainSubstring("msg=hello"))
	})
})
