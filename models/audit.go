// SPDX-License-Identifier: Apache-2.0

package models

// BlindMISignals are the four independently computed 0..1 components of
// the privacy-audit score.
type BlindMISignals struct {
	Entropy         float64 `json:"entropy"`
	NgramRepetition float64 `json:"ngramRepetition"`
	VocabRichness   float64 `json:"vocabRichness"`
	CodeStructure   float64 `json:"codeStructure"`
}

// BlindMIResult estimates how much a text resembles memorized training
// data. Audit-only: it never gates the allow/redact/block verdict.
type BlindMIResult struct {
	Score      float64        `json:"blindMiScore"`
	Candidates []string       `json:"candidates"`
	Signals    BlindMISignals `json:"signals"`
}

// LeakFinding is one simulator hit: either a scanner match or an
// inference-pattern hit describing what an attacker could learn.
type LeakFinding struct {
	File     string   `json:"file"`
	Category string   `json:"category"`
	Detail   string   `json:"detail"`
	Severity Severity `json:"severity"`
	Count    int      `json:"count"`
}

// LeakSimulationReport aggregates a simulator run over a directory.
type LeakSimulationReport struct {
	Root          string        `json:"root"`
	FilesScanned  int           `json:"filesScanned"`
	FilesSkipped  int           `json:"filesSkipped"`
	SecretsFound  int           `json:"secretsFound"`
	PIIFound      int           `json:"piiFound"`
	Findings      []LeakFinding `json:"findings"`
	ExposureScore int           `json:"exposureScore"`
}
