// Package plan builds triage plans from validated screening results and
// upstream action recommendations. It defines the Plan artifact, the tagged
// upstream payload union, and the corridor risk rule table.
package plan
