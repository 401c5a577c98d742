package section

// Manifest is the structured metadata a section renderer emits alongside
// content. The orchestrator consumes it; renderers are its only writer.
type Manifest struct {
	// TitleOverride replaces the report-type default title when non-empty.
	TitleOverride string

	// Complete indicates the renderer filled every required field.
	Complete bool

	// DependsOn declares soft dependencies on other sections. Drafting is
	// never blocked on them, but unstarted dependencies produce warnings.
	DependsOn []ID

	// AuthoritativeKeys lists subject keys whose facts from this section
	// are authoritative. Conflicts against authoritative facts are promoted
	// to blocking by the contradiction detector.
	AuthoritativeKeys []string

	// QualityNote carries the advisory result of the external quality gate.
	// A failed check never blocks drafting.
	QualityNote string

	// Warnings holds completeness warnings computed at draft time.
	Warnings []string
}
