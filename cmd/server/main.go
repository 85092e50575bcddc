package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-support-agent-be/internal/bootstrap"
	"ai-support-agent-be/internal/config"
	"ai-support-agent-be/internal/server"
	"ai-support-agent-be/pkg/knowledge"
	"ai-support-agent-be/pkg/llm"

	"github.com/fatih/color"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration invalid: %v", err)
	}

	// 2. Bootstrap dependencies (container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Logger.Sync()

	// 3. Fail fast when the generation backend is unreachable. Once serving
	// has started, backend failures degrade per message instead.
	if hc, ok := container.Provider.(llm.HealthChecker); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := hc.Healthcheck(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Generation backend not reachable: %v (is ollama running? start it with: ollama serve)", err)
		}
		container.Logger.Info("Main", "Generation backend connection successful", nil)
	}

	// 4. Ingest the knowledge base, creating the sample FAQ on first run
	paths, err := knowledgeBaseFiles(cfg.Paths.KnowledgeBaseDir, container)
	if err != nil {
		log.Fatalf("Knowledge base unavailable: %v", err)
	}
	ingestStats := container.KnowledgeStore.Ingest(paths)

	// 5. Start background services
	go func() {
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	// 6. Serve
	printBanner(cfg, container, ingestStats)

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}

// knowledgeBaseFiles lists the .txt documents to ingest, seeding the sample
// FAQ when the directory is empty.
func knowledgeBaseFiles(dir string, container *bootstrap.Container) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		container.Logger.Info("Main", "No knowledge base found, creating sample...", nil)
		samplePath := filepath.Join(dir, "sample_faq.txt")
		if err := os.WriteFile(samplePath, []byte(sampleFAQ), 0o644); err != nil {
			return nil, err
		}
		paths = []string{samplePath}
	}

	return paths, nil
}

func printBanner(cfg *config.Config, container *bootstrap.Container, ingestStats knowledge.IngestStats) {
	stats := container.KnowledgeStore.Statistics()

	divider := color.New(color.FgHiBlack).Sprint("============================================================")
	ok := color.New(color.FgGreen, color.Bold)

	log.Println(divider)
	ok.Println("System Ready")
	log.Println(divider)
	log.Printf("  Model:       %s", cfg.Ai.LLMModel)
	log.Printf("  Documents:   %d (%d failed)", stats.TotalDocuments, ingestStats.Failed)
	log.Printf("  Chunks:      %d", stats.TotalChunks)
	log.Printf("  Temperature: %v", cfg.Ai.Temperature)
	log.Printf("  Languages:   %d supported", len(cfg.Languages.Supported))
	log.Printf("  WebSocket:   ws://localhost:%s/api/ws", cfg.App.Port)
	log.Println(divider)
}

const sampleFAQ = `Customer Support FAQ

Q: What are your business hours?
A: We're available 24/7 for customer support through this chat system.
Our live agents are available Monday-Friday 9 AM - 6 PM EST.

Q: How do I reset my password?
A: To reset your password:
1. Go to the login page
2. Click "Forgot Password"
3. Enter your registered email address
4. Check your email for a reset link
5. Follow the link and create a new password

Q: What payment methods do you accept?
A: We accept all major credit cards (Visa, Mastercard, American Express),
PayPal, and bank transfers for enterprise customers.

Q: How long does shipping take?
A: Shipping times vary by location:
- Standard shipping: 5-7 business days
- Express shipping: 2-3 business days
- International shipping: 10-15 business days

Q: What is your return policy?
A: We offer a 30-day money-back guarantee on all products.
Items must be unused and in original packaging.
Return shipping is free for defective items.

Q: How do I contact customer support?
A: You can reach us via:
- This live chat (24/7)
- Email: support@company.com
- Phone: 1-800-123-4567 (Mon-Fri 9 AM - 6 PM EST)

Q: Do you offer discounts?
A: Yes! We offer:
- 10% off for first-time customers (use code: FIRST10)
- 15% off for students (with valid ID)
- Volume discounts for bulk orders
- Seasonal sales throughout the year

Q: How do I track my order?
A: Once your order ships, you'll receive a tracking number via email.
You can track your order at: www.company.com/track

Q: Can I cancel my order?
A: Yes, you can cancel within 24 hours of placing the order.
After that, the order may have already shipped.
Contact us immediately if you need to cancel.

Q: What if my product is defective?
A: We apologize for any defects! Contact us within 30 days and we'll:
- Provide a full refund, or
- Send a replacement at no charge
- Cover return shipping costs
`
