// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import "fmt"

// AnalysisTemplate returns the scaffold written to analysis.md at prepare
// time. It spells out the structure the merged synthesis must follow so the
// external step produces a document the renderer can compose directly.
func AnalysisTemplate(topic, reportStyle string) string {
	return fmt.Sprintf(`## Key Research Themes

Summarize 4-6 major themes for "%s" from the chunk summaries.
Use a numbered list (1., 2., 3., ...).
For each theme item, start with `+"`**<theme keyword>:**`"+` and write a paragraph (4-7 sentences) that includes:
- what the theme is,
- what changed in this recent window,
- why it matters for researchers and practitioners.
Use citations (title + arXiv URL) as evidence.

## Methodological Approaches

Describe 3-6 recurring approaches.
Use a numbered list (1., 2., 3., ...).
For each approach item, write a paragraph (4-7 sentences) with mechanism, strengths, tradeoffs, and at least one caveat or failure mode.
Cite papers for each approach.

## Notable Papers to Read First

Pick up to 6 papers and explain for each bullet (2-4 sentences):
- What the paper is about in plain language
- Why it matters now
- Who should read it first
- Caveat or best-use context

## What Is New in This Window

Write 3-5 substantial bullets on notable shifts.
Each bullet should include a "then vs now" contrast supported by citations.

## Challenges and Future Directions

Write 4-6 numbered challenges.
Each challenge should include:
- concrete bottleneck,
- evidence from papers,
- plausible near-term direction.

## Concluding Overview

Write 10-14 sentences in %s tone.
End with a 2-3 sentence reading order recommendation for newcomers.
`, topic, reportStyle)
}
