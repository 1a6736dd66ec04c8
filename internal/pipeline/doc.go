// Package pipeline executes the dataset build as a sequence of steps.
//
// A build loads museums and paintings, joins each painting to the museum it
// hangs in, resolves both images, writes scaled previews, runs the stylizer
// and finally emits the dataset. Every stage is a Step that reads and
// extends the shared Run state, so stages can be tested, reordered or
// replaced on their own.
package pipeline
