package recognize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const noMatchToken = "NONE"

const identifyPrompt = "You are a highly accurate face recognition system. " +
	"Your task is to identify if the person in the 'LIVE_FRAME' image matches " +
	"any of the provided 'STUDENT_PROFILE' images. Compare the face in the " +
	"LIVE_FRAME to each student's profile. Respond with ONLY the matching " +
	"student's ID. If no confident match is found, respond with 'NONE'."

// Gemini asks the Gemini API to match a probe frame against candidate
// reference images in a single composite request.
type Gemini struct {
	client       *genai.Client
	model        string
	probeMaxSize int
}

// NewGemini creates a Gemini-backed provider.
func NewGemini(ctx context.Context, apiKey, model string, probeMaxSize int) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if probeMaxSize <= 0 {
		probeMaxSize = 800
	}
	return &Gemini{client: client, model: model, probeMaxSize: probeMaxSize}, nil
}

// Identify sends one request carrying the probe plus every candidate's
// reference image tagged with its id, and parses the reply into a Result.
// A reply outside the expected vocabulary is an error; the Service above
// folds it into a miss.
func (g *Gemini) Identify(ctx context.Context, probe []byte, candidates []Candidate) (Result, error) {
	resized, err := ResizeImage(probe, g.probeMaxSize)
	if err != nil {
		return Result{}, fmt.Errorf("resize probe: %w", err)
	}

	parts := []*genai.Part{
		{Text: identifyPrompt},
		{Text: "--- START OF DATA ---"},
		{Text: "LIVE_FRAME:"},
		{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
		{Text: "STUDENT_PROFILES:"},
	}
	for _, c := range candidates {
		mime := c.MIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts,
			&genai.Part{Text: "Student ID: " + c.ID},
			&genai.Part{InlineData: &genai.Blob{Data: c.Image, MIMEType: mime}},
		)
	}
	parts = append(parts,
		&genai.Part{Text: "--- END OF DATA ---"},
		&genai.Part{Text: "Question: Based on the images, which student ID does the person in LIVE_FRAME match? Respond with only the ID or 'NONE'."},
	)

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return Result{}, fmt.Errorf("gemini API error: %w", err)
	}

	reply := strings.TrimSpace(result.Text())
	if reply == "" {
		return Result{}, fmt.Errorf("empty response from gemini")
	}
	if reply == noMatchToken {
		return Result{}, nil
	}
	if !strings.HasPrefix(reply, "s") {
		return Result{}, fmt.Errorf("unexpected response %q", reply)
	}
	for _, c := range candidates {
		if c.ID == reply {
			return Result{StudentID: reply, Matched: true}, nil
		}
	}
	return Result{}, fmt.Errorf("response %q names no candidate", reply)
}
