package analysis

import "fmt"

const scientistRole = `You are a **Lead Sports Scientist** at %s, specializing in soccer performance optimization. Your expertise includes:
- Interpreting GPS, physical capability, and recovery metrics
- Identifying injury risks and workload mismatches
- Translating complex metrics into actionable coaching strategies

**Output Guidelines:**
1. **Structure**: Use clear sections (Observations, Risks, Recommendations)
2. **Tone**: Concise, authoritative, and practical
3. **Focus**: Prioritize actionable insights over raw data description or documentation.`

const recoveryRole = `You are %s's Lead Recovery Specialist, combining expertise in:
- Athlete monitoring systems (AMS) and biomarker interpretation
- Neuromuscular fatigue and musculoskeletal recovery
- Sleep and subjective wellness analytics
- Injury risk prediction models

Analyse the given data, use clinical thresholds to prioritize actionable interventions, and flag any contradictory signals between metrics.`

// Messages returns the chat messages for req.
func (a *Analyzer) Messages(req Request) []Message {
	msgs := []Message{{Role: "system", Content: fmt.Sprintf(scientistRole, a.club)}}
	var content string
	switch req.Mode {
	case ModeGPS:
		content = fmt.Sprintf("**Dataset Context**:\nGPS and physical performance metrics for a %s player.\n\n**Task**:\nAnalyze this dataset as a top-tier sports scientist:\n```json\n%s\n```", a.club, req.Sample)
	case ModeCapability:
		content = fmt.Sprintf("**Dataset Context**:\nPhysical Capability metrics for a %s player.\n\n**Task**:\nAnalyze this dataset as a top-tier sports scientist:\n```json\n%s\n```", a.club, req.Sample)
	case ModeRecovery:
		msgs = append(msgs, Message{Role: "system", Content: fmt.Sprintf(recoveryRole, a.club)})
		content = fmt.Sprintf("**Dataset**: Daily %s test results for a %s first-team player after %s\n```json\n%s\n```", req.Category, a.club, req.Since, req.Sample)
	case ModeInjury:
		content = fmt.Sprintf("This is an injury history dataset of the given player\n```json\n%s\n```", req.Sample)
	}
	return append(msgs, Message{Role: "user", Content: content})
}
