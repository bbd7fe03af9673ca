package quiz

import "github.com/timmy/musicmatch/internal/domain"

type w = map[string]float64

func opt(id, text string, weights w) domain.QuizOption {
	return domain.QuizOption{ID: id, Text: text, Weights: weights}
}

var defaultQuestions = []domain.QuizQuestion{
	{
		ID:       "energy_1",
		Question: "Pick the energy level that matches your current mood:",
		Options: []domain.QuizOption{
			opt("a", "I want to feel alive and pumped up", w{"energy": 1.0, "loudness": 0.7, "valence": 0.6}),
			opt("b", "Something with momentum but not overwhelming", w{"energy": 0.6, "danceability": 0.5}),
			opt("c", "Relaxed and easy-going", w{"energy": 0.3, "acousticness": 0.4}),
			opt("d", "Calm, ambient, atmospheric", w{"energy": 0.1, "instrumentalness": 0.5}),
		},
	},
	{
		ID:       "energy_2",
		Question: "When you need music to help you focus, you prefer:",
		Options: []domain.QuizOption{
			opt("a", "High-intensity tracks that keep me alert", w{"energy": 0.9, "loudness": 0.6}),
			opt("b", "Steady rhythms with moderate energy", w{"energy": 0.5, "danceability": 0.4}),
			opt("c", "Soft background music", w{"energy": 0.2, "acousticness": 0.5, "instrumentalness": 0.4}),
			opt("d", "Complete silence or minimal ambient sounds", w{"energy": 0.05, "instrumentalness": 0.8}),
		},
	},
	{
		ID:       "mood_1",
		Question: "What emotional tone are you looking for right now?",
		Options: []domain.QuizOption{
			opt("a", "Happy and uplifting - I want to feel good", w{"valence": 1.0, "energy": 0.6}),
			opt("b", "Bittersweet - something that understands complex feelings", w{"valence": 0.5, "acousticness": 0.3}),
			opt("c", "Melancholic - I'm in a reflective mood", w{"valence": 0.2, "acousticness": 0.5}),
			opt("d", "Dark and intense - I want depth", w{"valence": 0.1, "energy": 0.6, "loudness": 0.5}),
		},
	},
	{
		ID:       "mood_2",
		Question: "Music that makes you feel nostalgic tends to be:",
		Options: []domain.QuizOption{
			opt("a", "Warm and comforting, like a sunny memory", w{"valence": 0.7, "acousticness": 0.6}),
			opt("b", "Energetic reminders of good times", w{"valence": 0.8, "energy": 0.7, "danceability": 0.5}),
			opt("c", "Wistful and longing", w{"valence": 0.3, "acousticness": 0.4}),
			opt("d", "I don't usually seek nostalgic music", w{"valence": 0.5}),
		},
	},
	{
		ID:       "dance_1",
		Question: "When a good song comes on, you typically:",
		Options: []domain.QuizOption{
			opt("a", "Can't help but move - dancing is inevitable", w{"danceability": 1.0, "energy": 0.7}),
			opt("b", "Nod along or tap your foot", w{"danceability": 0.6}),
			opt("c", "Just listen and appreciate", w{"danceability": 0.3, "instrumentalness": 0.3}),
			opt("d", "Get lost in thought", w{"danceability": 0.1, "acousticness": 0.4}),
		},
	},
	{
		ID:       "dance_2",
		Question: "At a party, you prefer music that:",
		Options: []domain.QuizOption{
			opt("a", "Gets everyone on the dance floor", w{"danceability": 1.0, "energy": 0.8, "valence": 0.7}),
			opt("b", "Creates a fun vibe without demanding attention", w{"danceability": 0.6, "valence": 0.6}),
			opt("c", "Allows for conversation", w{"danceability": 0.3, "energy": 0.3}),
			opt("d", "I prefer smaller gatherings with curated playlists", w{"danceability": 0.4, "acousticness": 0.4}),
		},
	},
	{
		ID:       "acoustic_1",
		Question: "How do you feel about acoustic/unplugged music?",
		Options: []domain.QuizOption{
			opt("a", "Love it - there's something raw and authentic about it", w{"acousticness": 1.0, "instrumentalness": 0.3}),
			opt("b", "Enjoy it sometimes, depends on my mood", w{"acousticness": 0.5}),
			opt("c", "Prefer a mix of electronic and organic sounds", w{"acousticness": 0.3, "energy": 0.5}),
			opt("d", "Give me synthesizers and electronic production", w{"acousticness": 0.1, "energy": 0.6}),
		},
	},
	{
		ID:       "vocals_1",
		Question: "When it comes to vocals in music:",
		Options: []domain.QuizOption{
			opt("a", "Lyrics and vocals are essential - I connect with the words", w{"instrumentalness": 0.0}),
			opt("b", "I like vocals but they don't need to be the focus", w{"instrumentalness": 0.3}),
			opt("c", "Often prefer instrumental music", w{"instrumentalness": 0.7}),
			opt("d", "Strongly prefer music without vocals", w{"instrumentalness": 1.0}),
		},
	},
	{
		ID:       "tempo_1",
		Question: "Your preferred tempo for everyday listening:",
		Options: []domain.QuizOption{
			opt("a", "Fast and driving (140+ BPM)", w{"bpm_normalized": 1.0, "energy": 0.7}),
			opt("b", "Upbeat and groovy (110-140 BPM)", w{"bpm_normalized": 0.7, "danceability": 0.6}),
			opt("c", "Moderate and steady (80-110 BPM)", w{"bpm_normalized": 0.5}),
			opt("d", "Slow and deliberate (under 80 BPM)", w{"bpm_normalized": 0.2, "acousticness": 0.3}),
		},
	},
	{
		ID:       "context_1",
		Question: "You're going for a workout. What do you reach for?",
		Options: []domain.QuizOption{
			opt("a", "High-energy bangers that push me harder", w{"energy": 1.0, "loudness": 0.8, "danceability": 0.7}),
			opt("b", "Steady beats that help me pace myself", w{"energy": 0.6, "danceability": 0.6}),
			opt("c", "I don't really listen to music while exercising", w{"energy": 0.4}),
			opt("d", "Podcasts or audiobooks instead", w{"instrumentalness": 0.2, "speechiness": 0.9}),
		},
	},
	{
		ID:       "context_2",
		Question: "For a late-night drive, you'd choose:",
		Options: []domain.QuizOption{
			opt("a", "Atmospheric electronic or synthwave", w{"energy": 0.5, "instrumentalness": 0.6, "valence": 0.4}),
			opt("b", "Chill indie or alternative", w{"acousticness": 0.5, "energy": 0.4, "valence": 0.5}),
			opt("c", "Upbeat pop or rock to stay alert", w{"energy": 0.8, "valence": 0.7}),
			opt("d", "R&B or soul for smooth vibes", w{"danceability": 0.6, "valence": 0.6, "acousticness": 0.4}),
		},
	},
	{
		ID:       "context_3",
		Question: "When you're feeling stressed, music should:",
		Options: []domain.QuizOption{
			opt("a", "Help me release tension with something intense", w{"energy": 0.9, "loudness": 0.7}),
			opt("b", "Distract me with something fun and upbeat", w{"valence": 0.8, "danceability": 0.6}),
			opt("c", "Calm me down with something peaceful", w{"energy": 0.2, "acousticness": 0.7, "instrumentalness": 0.5}),
			opt("d", "Match my mood so I can process it", w{"valence": 0.3, "acousticness": 0.4}),
		},
	},
	{
		ID:       "speech_1",
		Question: "How do you feel about rap and spoken word?",
		Options: []domain.QuizOption{
			opt("a", "Bars first - the flow and the words are the point", w{"speechiness": 0.9, "danceability": 0.6}),
			opt("b", "A verse here and there keeps things interesting", w{"speechiness": 0.5}),
			opt("c", "I'd rather hear singing", w{"speechiness": 0.2}),
			opt("d", "The less talking the better", w{"speechiness": 0.05, "instrumentalness": 0.6}),
		},
	},
	{
		ID:       "live_1",
		Question: "Studio polish or live recordings?",
		Options: []domain.QuizOption{
			opt("a", "Live all the way - I want to hear the crowd", w{"liveness": 0.9, "energy": 0.7}),
			opt("b", "A good live album now and then", w{"liveness": 0.6}),
			opt("c", "Mostly studio versions", w{"liveness": 0.3}),
			opt("d", "Clean studio production only", w{"liveness": 0.1, "loudness": 0.5}),
		},
	},
}
