// Package support serves the help desk: a keyword chatbot, simulated service
// telemetry and incident tickets.
package support

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

type Answer struct {
	Key  string `yaml:"key" json:"key"`
	Text string `yaml:"text" json:"text"`
}

// KnowledgeBase is the chatbot's ordered answer table plus its fallbacks.
type KnowledgeBase struct {
	Answers  []Answer `yaml:"answers" json:"answers"`
	Greeting string   `yaml:"greeting" json:"greeting"`
	Help     string   `yaml:"help" json:"help"`
	Unknown  string   `yaml:"unknown" json:"unknown"`
}

// LoadKnowledgeBase reads a YAML knowledge base. An empty path yields the
// compiled-in default; empty fallbacks are taken from it.
func LoadKnowledgeBase(path string) (KnowledgeBase, error) {
	if path == "" {
		return DefaultKnowledgeBase(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultKnowledgeBase(), fmt.Errorf("read knowledge base: %w", err)
	}

	var kb KnowledgeBase
	if err := yaml.Unmarshal(content, &kb); err != nil {
		return KnowledgeBase{}, fmt.Errorf("parse knowledge base: %w", err)
	}
	if len(kb.Answers) == 0 {
		return KnowledgeBase{}, errors.New("knowledge base has no answers")
	}
	for i, a := range kb.Answers {
		if strings.TrimSpace(a.Key) == "" {
			return KnowledgeBase{}, fmt.Errorf("answer %d has an empty key", i)
		}
		kb.Answers[i].Key = strings.ToLower(a.Key)
	}

	def := DefaultKnowledgeBase()
	if kb.Greeting == "" {
		kb.Greeting = def.Greeting
	}
	if kb.Help == "" {
		kb.Help = def.Help
	}
	if kb.Unknown == "" {
		kb.Unknown = def.Unknown
	}
	return kb, nil
}

// Reply joins every answer whose key occurs in the message, in table order.
// Without a match it greets, offers help or admits it does not know.
func (kb KnowledgeBase) Reply(message string) string {
	msg := strings.ToLower(message)

	var matched []string
	for _, a := range kb.Answers {
		if strings.Contains(msg, a.Key) {
			matched = append(matched, a.Text)
		}
	}
	if len(matched) > 0 {
		return strings.Join(matched, " ")
	}

	words := strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	has := func(targets ...string) bool {
		for _, w := range words {
			for _, t := range targets {
				if w == t {
					return true
				}
			}
		}
		return false
	}
	switch {
	case has("hello", "hi"):
		return kb.Greeting
	case has("help"):
		return kb.Help
	default:
		return kb.Unknown
	}
}

func DefaultKnowledgeBase() KnowledgeBase {
	return KnowledgeBase{
		Answers: []Answer{
			{Key: "optihealth", Text: "OptiHealth is a care coordination platform built to reduce hospital readmissions. It combines structured EMR vitals with keyword analysis of clinical notes."},
			{Key: "service", Text: "We provide real-time patient risk monitoring, automated acuity scoring and clinician-in-the-loop decision support for virtual wards and home care teams."},
			{Key: "model", Text: "The readmission model is a logistic regression trained on stored patient vitals such as age, BMI, blood pressure and derived haemodynamic indices."},
			{Key: "nlp", Text: "Clinical notes are scanned against keyword dictionaries to extract symptoms, medications and risk factors, which adjust the risk score and note sentiment."},
			{Key: "shap", Text: "SHAP values show how much each factor, for example High BP, pushed a patient's risk score up or down, so every score can be explained."},
			{Key: "risk score", Text: "The risk score runs from 5 to 98. Scores of 50 and above raise a High Risk alert and 75 and above a Critical alert that needs immediate intervention."},
			{Key: "census", Text: "The census chart shows the last 30 days of admissions with gaps carried forward, followed by a 7 day projection that starts from the latest day."},
			{Key: "architecture", Text: "The platform runs a Go API backed by PostgreSQL, Redis for dashboard caching and Kafka for prediction audit events."},
			{Key: "reset", Text: "To reset your password, raise a request under My Requests or call the IT Service Desk on Ext. 4022. Passwords cannot be reset over chat."},
			{Key: "slow", Text: "Slowness usually follows high load on the IoT Gateway. Run the Self-Healing Diagnostics tool to check your local latency."},
			{Key: "ipad", Text: "iPad sync failures usually mean the device left the Clinical-Secure subnet. Toggle Airplane Mode or restart the OptiHealth app."},
			{Key: "contact", Text: "For critical outages use the NOC Hotline button at the top of the console to reach the 24/7 Operations Center."},
		},
		Greeting: "Hello! I am the OptiHealth assistant. I can explain risk scores and SHAP values, help with EMR integration or troubleshoot device issues. What do you need?",
		Help:     "I can help with: 1. Explaining risk scores 2. Troubleshooting iPads 3. Reporting outages. You can also type 'SHAP' or 'NLP' to learn how scoring works.",
		Unknown:  "I'm not sure about that one. Try asking about 'Risk Score', 'SHAP' or 'System Status'.",
	}
}
