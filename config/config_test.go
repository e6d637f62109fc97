package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-proxy/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:      ":80",
			Environment:  config.EnvDev,
			ReadTimeout:  "15s",
			WriteTimeout: "60s",
			IdleTimeout:  "60s",
		},
		Proxy: config.ProxyConfig{
			BackendTimeout:      "30s",
			MaxIdleConnsPerHost: 64,
			IdleConnTimeout:     "90s",
		},
		Metrics: config.MetricsConfig{
			Enabled:    true,
			Address:    ":9090",
			BufferSize: 1000,
		},
		Logging: config.LoggingConfig{Level: config.LogLevelInfo},
	}
}

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("without a config file", func() {
			It("should fall back to defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":80"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.Proxy.BackendTimeoutDuration()).To(Equal(30 * time.Second))
				Expect(cfg.Proxy.IdleConnTimeoutDuration()).To(Equal(90 * time.Second))
				Expect(cfg.Proxy.MaxIdleConnsPerHost).To(Equal(64))
				Expect(cfg.Metrics.Enabled).To(BeTrue())
				Expect(cfg.Metrics.Address).To(Equal(":9090"))
				Expect(cfg.Metrics.BufferSize).To(Equal(1000))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))

				read, write, idle := cfg.Server.Timeouts()
				Expect(read).To(Equal(15 * time.Second))
				Expect(write).To(Equal(60 * time.Second))
				Expect(idle).To(Equal(60 * time.Second))
			})
		})

		Context("with a config file", func() {
			BeforeEach(func() {
				content := `
server:
  address: ":8080"
  environment: "prod"
proxy:
  backend_timeout: "5s"
metrics:
  enabled: false
logging:
  level: "debug"
`
				Expect(os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(content), 0o644)).To(Succeed())
			})

			It("should override defaults with file values", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())

				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
				Expect(cfg.Proxy.BackendTimeoutDuration()).To(Equal(5 * time.Second))
				Expect(cfg.Metrics.Enabled).To(BeFalse())
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})

			It("should keep defaults for keys the file omits", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Proxy.MaxIdleConnsPerHost).To(Equal(64))
			})
		})

		Context("with environment variables", func() {
			BeforeEach(func() {
				os.Setenv("SERVER_ADDRESS", ":8181")
				os.Setenv("PROXY_BACKEND_TIMEOUT", "2s")
			})

			AfterEach(func() {
				os.Unsetenv("SERVER_ADDRESS")
				os.Unsetenv("PROXY_BACKEND_TIMEOUT")
			})

			It("should apply environment overrides", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":8181"))
				Expect(cfg.Proxy.BackendTimeoutDuration()).To(Equal(2 * time.Second))
			})
		})

		Context("with an invalid config file", func() {
			It("should reject an unknown environment", func() {
				content := "server:\n  environment: \"qa\"\n"
				Expect(os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(content), 0o644)).To(Succeed())

				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject unparsable yaml", func() {
				Expect(os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte("server: [\n"), 0o644)).To(Succeed())

				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		It("should accept a complete config", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		DescribeTable("rejects invalid values",
			func(mutate func(*config.Config)) {
				cfg := validConfig()
				mutate(cfg)
				Expect(cfg.Validate()).NotTo(Succeed())
			},
			Entry("address without port", func(c *config.Config) { c.Server.Address = "localhost" }),
			Entry("address with empty port", func(c *config.Config) { c.Server.Address = "localhost:" }),
			Entry("address with bad host", func(c *config.Config) { c.Server.Address = "bad_host!:80" }),
			Entry("address with out of range port", func(c *config.Config) { c.Server.Address = ":70000" }),
			Entry("unknown environment", func(c *config.Config) { c.Server.Environment = "qa" }),
			Entry("bad read timeout", func(c *config.Config) { c.Server.ReadTimeout = "soon" }),
			Entry("negative write timeout", func(c *config.Config) { c.Server.WriteTimeout = "-1s" }),
			Entry("zero backend timeout", func(c *config.Config) { c.Proxy.BackendTimeout = "0s" }),
			Entry("zero idle conns", func(c *config.Config) { c.Proxy.MaxIdleConnsPerHost = 0 }),
			Entry("bad metrics address", func(c *config.Config) { c.Metrics.Address = "nope" }),
			Entry("zero metrics buffer", func(c *config.Config) { c.Metrics.BufferSize = 0 }),
			Entry("unknown log level", func(c *config.Config) { c.Logging.Level = "trace" }),
		)

		It("should skip metrics checks when metrics are disabled", func() {
			cfg := validConfig()
			cfg.Metrics = config.MetricsConfig{Enabled: false}
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})
