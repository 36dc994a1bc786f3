// Package mission defines the job record read from the hosted collection store
// and the small interfaces shared by the generation pipeline.
package mission
