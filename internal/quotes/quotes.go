// Package quotes holds the built-in motivational quotes.
package quotes

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func (q Quote) String() string {
	return fmt.Sprintf("%q - %s", q.Text, q.Author)
}

var builtin = []Quote{
	{"Success is the sum of small efforts repeated day in and day out.", "Robert Collier"},
	{"The expert in anything was once a beginner.", "Helen Hayes"},
	{"Education is the most powerful weapon which you can use to change the world.", "Nelson Mandela"},
	{"The beautiful thing about learning is that no one can take it away from you.", "B.B. King"},
	{"Don't watch the clock; do what it does. Keep going.", "Sam Levenson"},
	{"The only way to do great work is to love what you do.", "Steve Jobs"},
	{"Believe you can and you're halfway there.", "Theodore Roosevelt"},
	{"It always seems impossible until it's done.", "Nelson Mandela"},
	{"Learning is not attained by chance, it must be sought for with ardor and attended to with diligence.", "Abigail Adams"},
	{"The capacity to learn is a gift; the ability to learn is a skill; the willingness to learn is a choice.", "Brian Herbert"},
	{"Study while others are sleeping; work while others are loafing; prepare while others are playing.", "William Arthur Ward"},
	{"Your attitude, not your aptitude, will determine your altitude.", "Zig Ziglar"},
	{"The future belongs to those who believe in the beauty of their dreams.", "Eleanor Roosevelt"},
	{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill"},
	{"The only impossible journey is the one you never begin.", "Tony Robbins"},
	{"Strive for progress, not perfection.", "Unknown"},
	{"You don't have to be great to start, but you have to start to be great.", "Zig Ziglar"},
	{"The secret of getting ahead is getting started.", "Mark Twain"},
	{"Don't let what you cannot do interfere with what you can do.", "John Wooden"},
	{"A little progress each day adds up to big results.", "Satya Nani"},
}

// All returns a copy of the built-in quotes.
func All() []Quote {
	return slices.Clone(builtin)
}

// Random picks a quote using rng, or the global source when rng is nil.
func Random(rng *rand.Rand) Quote {
	if rng == nil {
		return builtin[rand.IntN(len(builtin))]
	}
	return builtin[rng.IntN(len(builtin))]
}
