package release

// Word lists for Codename. Kept short (≤6 letters) so a release codename
// reads as a single glanceable phrase in logs and PR bodies.
var adverbs = []string{
	"boldly", "gently", "deftly", "softly", "nearly", "barely", "freely",
	"sanely", "wisely", "calmly", "slowly", "warmly", "fairly", "surely",
	"evenly", "kindly", "neatly", "aptly", "dimly", "smugly",
}

var adjectives = []string{
	"amber", "bold", "brisk", "calm", "cozy", "crisp", "eager", "fair",
	"gentle", "hardy", "humble", "jolly", "keen", "lively", "lucid",
	"merry", "nimble", "plain", "quiet", "ready", "sage", "sleek",
	"solid", "spry", "steady", "stout", "sunny", "swift", "tidy", "witty",
}

var nouns = []string{
	"atlas", "beacon", "bridge", "canyon", "cedar", "comet", "delta",
	"ember", "falcon", "fjord", "gable", "harbor", "inlet", "kiln",
	"lagoon", "marsh", "oasis", "pebble", "quartz", "ridge", "river",
	"slope", "summit", "tundra", "valley", "willow",
}
