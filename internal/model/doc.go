// Package model defines the records that flow through the dataset pipeline.
//
// Each stage has its own type:
//   - Museum and Painting: entities loaded from the upstream store
//   - JoinedEntry: a painting paired with the museum that claimed it
//   - ResolvedEntry: a joined entry whose images were both downloaded
//   - DatasetEntry: the flattened record written to the dataset file
//
// Museum and Painting are also the values stored in the parsed-record cache,
// so their JSON and YAML tags define the cache format.
package model
