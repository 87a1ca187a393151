// Package transfer reads and writes save files.
//
// A save file is a JSON object with three members:
//
//	{
//	  "elements":            [{"symbol": "Mud", "emoji": "...", "discovery": true}],
//	  "symbolCombos":        {"Earth+++Water": {"symbol": "Mud", "emoji": "..."}},
//	  "inverseSymbolCombos": {"Mud": [{...}, {...}]}
//	}
//
// Export writes the known elements and both caches verbatim, tombstones
// included. Import validates every entry on its own against a CUE schema,
// drops the invalid ones, clears the discovery flag, and merges so that
// entries already present win.
package transfer
