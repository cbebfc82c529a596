// Package triage orchestrates the screening pipeline: validate the raw
// payload against its contract version, build a plan from the validated
// result and the upstream recommendation, dispatch the plan's actions, and
// persist the outcome.
package triage
