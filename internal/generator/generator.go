// Package generator drafts cover letters for high-match postings with the
// Gemini API and saves them as markdown under the data directory.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/profile"
)

const defaultModel = "gemini-2.5-pro"

type Generator struct {
	client    *genai.Client
	modelName string
	profile   profile.Profile
	outputDir string
	log       *zap.Logger
}

func New(ctx context.Context, apiKey, model string, prof profile.Profile, dataDir string, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	outputDir := filepath.Join(dataDir, "cover_letters")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cover letter dir: %w", err)
	}

	return &Generator{
		client:    client,
		modelName: model,
		profile:   prof,
		outputDir: outputDir,
		log:       log,
	}, nil
}

// Generate drafts one letter and returns the saved file path.
func (g *Generator) Generate(ctx context.Context, job domain.JobRecord) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("generator is not initialized")
	}

	letter, err := g.draft(ctx, job)
	if err != nil {
		return "", err
	}
	return g.save(job, letter)
}

// GenerateBatch drafts letters for up to max jobs, tolerating per-job
// failures. It returns the fingerprints of jobs whose letter was written.
func (g *Generator) GenerateBatch(ctx context.Context, jobs []domain.JobRecord, max int) []string {
	if max <= 0 {
		max = 10
	}

	var done []string
	for _, job := range jobs {
		if len(done) >= max {
			g.log.Info("cover letter cap reached", zap.Int("max", max))
			break
		}
		path, err := g.Generate(ctx, job)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			g.log.Warn("cover letter generation failed",
				zap.String("title", job.Title),
				zap.Error(err))
			continue
		}
		g.log.Info("cover letter written",
			zap.String("title", job.Title),
			zap.Int("score", job.Score),
			zap.String("path", path))
		done = append(done, job.Fingerprint)
	}
	return done
}

func (g *Generator) draft(ctx context.Context, job domain.JobRecord) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(buildPrompt(g.profile, job)), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	letter := strings.TrimSpace(builder.String())
	if letter == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return letter, nil
}

func (g *Generator) save(job domain.JobRecord, letter string) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.md",
		time.Now().Format("20060102"), safeFilename(job.Title), job.Fingerprint)
	path := filepath.Join(g.outputDir, name)

	content := fmt.Sprintf(`# Cover Letter: %s

**Organization:** %s
**Location:** %s
**Job URL:** %s
**Generated:** %s
**Match Score:** %d%%

---

%s

---
*This cover letter was auto-generated. Please review and customize before submitting.*
`,
		job.Title, job.Organization, job.Location, job.URL,
		time.Now().Format(time.RFC3339), job.Score, letter)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write cover letter: %w", err)
	}
	return path, nil
}

const maxPromptDescription = 3000

func buildPrompt(p profile.Profile, job domain.JobRecord) string {
	desc := job.Description
	if len(desc) > maxPromptDescription {
		desc = desc[:maxPromptDescription]
	}

	skills := p.Skills
	if len(skills) > 10 {
		skills = skills[:10]
	}

	var b strings.Builder
	b.WriteString("You are a professional cover letter writer. Write a compelling cover letter for the following job application.\n\n")

	b.WriteString("## Candidate Profile\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Years of Experience: %d\n", p.ExperienceYears)
	fmt.Fprintf(&b, "- Key Skills: %s\n", strings.Join(skills, ", "))
	fmt.Fprintf(&b, "- Sectors: %s\n", strings.Join(p.Sectors, ", "))
	fmt.Fprintf(&b, "- Languages: %s\n", strings.Join(p.Languages, ", "))
	fmt.Fprintf(&b, "- Certifications: %s\n", strings.Join(p.Certifications, ", "))
	fmt.Fprintf(&b, "- Previous Organizations: %s\n", strings.Join(p.Organizations, ", "))
	fmt.Fprintf(&b, "- Donor Experience: %s\n\n", strings.Join(p.PriorDonors, ", "))

	b.WriteString("## Job Details\n")
	fmt.Fprintf(&b, "- Title: %s\n", job.Title)
	fmt.Fprintf(&b, "- Organization: %s\n", job.Organization)
	fmt.Fprintf(&b, "- Location: %s\n", job.Location)
	fmt.Fprintf(&b, "- Job Description:\n%s\n\n", desc)

	b.WriteString(`## Instructions
1. Write a professional cover letter (300-400 words)
2. Address specific requirements from the job description
3. Highlight relevant experience from the candidate's background
4. Show enthusiasm for the organization's mission
5. Be specific - avoid generic statements
6. Use a professional but warm tone
7. Include a strong opening and closing

Format the letter with proper structure:
- Opening paragraph (why this role/organization)
- 1-2 body paragraphs (relevant experience and skills)
- Closing paragraph (call to action)

Do NOT include:
- Placeholder brackets like [Organization Name]
- Generic phrases like "I am writing to apply"
- The date or address header

Start directly with "Dear Hiring Manager," or "Dear [Position] Selection Committee,"
`)

	return b.String()
}

func safeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	s := b.String()
	if len(s) > 50 {
		s = s[:50]
	}
	return strings.Trim(s, "_")
}
