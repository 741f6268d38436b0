package planner

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack assembles the system prompts from a directory of markdown files.
// Each file may open with YAML front matter selecting its lane and order:
//
//	---
//	lane: planner
//	order: 2
//	---
//
// Files without a lane belong to the persona. Missing files fall back to
// the built-in defaults so the pipeline works out of the box.
type Pack struct {
	persona string
	planner string
}

type frontMatter struct {
	Lane  string `yaml:"lane"`
	Order int    `yaml:"order"`
}

type promptFile struct {
	meta frontMatter
	name string
	body string
}

func LoadPack(dir string) (*Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Pack{}, nil
		}
		return nil, err
	}

	var files []promptFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		meta, body := splitFrontMatter(data)
		files = append(files, promptFile{meta: meta, name: e.Name(), body: strings.TrimSpace(body)})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].meta.Order != files[j].meta.Order {
			return files[i].meta.Order < files[j].meta.Order
		}
		return files[i].name < files[j].name
	})

	pack := &Pack{}
	var persona, plannerParts []string
	for _, f := range files {
		if f.body == "" {
			continue
		}
		if f.meta.Lane == "planner" {
			plannerParts = append(plannerParts, f.body)
		} else {
			persona = append(persona, f.body)
		}
	}
	pack.persona = strings.Join(persona, "\n\n---\n\n")
	pack.planner = strings.Join(plannerParts, "\n\n---\n\n")
	return pack, nil
}

func splitFrontMatter(data []byte) (frontMatter, string) {
	var meta frontMatter
	trimmed := bytes.TrimLeft(data, "\n")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return meta, string(data)
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, string(data)
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		// Malformed front matter reads as plain content.
		return frontMatter{}, string(data)
	}

	body := rest[end+len("\n---"):]
	return meta, strings.TrimPrefix(string(body), "\n")
}

const defaultPersona = `You are Nexus, a polite personal desktop assistant.
Be concise and conversational. Never claim you executed an action unless
the reported outcome says it succeeded. If something failed, say it plainly.`

const defaultPlanner = `You turn a user's request into a plan by calling propose_plan.
Use mode CHAT with no steps for conversation, questions, and anything you
cannot do with the available intents. Use mode ACTION with steps only for
explicit requests to act on this computer. Keep the plan sentence short;
it is read back to the user for confirmation. Never invent intents.`

// Persona returns the chat/narration system prompt.
func (p *Pack) Persona() string {
	if p.persona == "" {
		return defaultPersona
	}
	return p.persona
}

// Planner returns the plan-generation system prompt.
func (p *Pack) Planner() string {
	if p.planner == "" {
		return defaultPlanner
	}
	return p.planner
}
