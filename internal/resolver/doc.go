// Package resolver turns wiki image references into downloaded image files.
//
// A reference such as "Mona Lisa, by Leonardo da Vinci.jpg" is normalized to
// the file name the wiki uses, looked up in the asset cache directory and, on
// a miss, searched for on a fixed list of description page URLs. Each page is
// scraped for the URL of the original-resolution file, which is downloaded,
// decoded, re-encoded and stored in the cache.
//
// Failing to resolve an image is never an error: Resolve reports the image
// as absent and callers skip the item.
package resolver
