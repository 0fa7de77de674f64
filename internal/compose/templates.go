package compose

import "github.com/solace-labs/solace/internal/analysis"

// variant is one candidate reply. WithMemory, when non-empty, carries a
// single %s slot filled with the most relevant memory item's content;
// Plain is the memory-free fallback.
type variant struct {
	WithMemory string
	Plain      string
}

type family []variant

// Special-topic families sit above the mode/category tables and win
// whenever their trigger matches, regardless of mode.

// workloadWithSchedule fires for deadline-flavored messages when a prior
// schedule item backs the conversation up.
var workloadWithSchedule = family{
	{WithMemory: "I remember you mentioned that %s. It makes sense that the pressure is building — what part feels most urgent right now?"},
	{WithMemory: "Earlier you told me %s. Given that, it sounds like the timeline is what's weighing on you. What would finishing 'enough' look like?"},
	{WithMemory: "You'd said %s, so this has been on your plate for a bit. What's one piece you could close out today?"},
}

// workloadNoSchedule is the same topic without supporting memory.
var workloadNoSchedule = family{
	{Plain: "Deadlines have a way of crowding everything else out. What's the piece of this that feels heaviest?"},
	{Plain: "It sounds like the work itself and the clock are both pressing on you. Which one is louder right now?"},
	{Plain: "That kind of time pressure is draining. What would make the next hour feel manageable?"},
}

// personStressWithMemory fires when a known person shows up alongside
// stress language.
var personStressWithMemory = family{
	{WithMemory: "This connects to something you shared before — %s. How has that been affecting things between you two lately?"},
	{WithMemory: "I recall %s. It sounds like that relationship is tangled up with the stress you're feeling. Want to unpack that?"},
}

var personStressNoMemory = family{
	{Plain: "It sounds like this person plays a big part in the stress you're carrying. How long has it felt this way?"},
	{Plain: "When someone close to the pressure keeps showing up in it, that's worth looking at. What happens when you're around them?"},
}

// Mode/category families. A missing category falls back to that mode's
// generic family. Variants with a WithMemory form lean on the first
// relevant memory item when one exists.
var modeCategoryFamilies = map[Mode]map[analysis.Category]family{
	ModeStandard: {
		analysis.CategoryAnxiety: {
			{WithMemory: "Given what you've shared — %s — the anxious feeling makes sense. What does it feel like in your body right now?", Plain: "Anxiety can be loud. What does it feel like in your body right now?"},
			{Plain: "That anxious edge sounds exhausting. When did you first notice it today?"},
			{Plain: "Let's slow this down together. What's the thought that keeps circling back?"},
		},
		analysis.CategoryWork: {
			{WithMemory: "Work keeps coming up — and I remember %s. What part of the job is hardest to switch off from?", Plain: "Work seems to be taking up a lot of space. What part is hardest to switch off from?"},
			{Plain: "It sounds like work is spilling into the rest of your life. How are your evenings feeling?"},
		},
		analysis.CategoryRelationships: {
			{Plain: "Relationships carry a lot of weight. What happened most recently that's sitting with you?"},
			{Plain: "It sounds like this connection matters to you. What would you want the other person to understand?"},
		},
		analysis.CategoryDepression: {
			{Plain: "That heaviness is real, and telling me about it took effort. What has today actually looked like for you?"},
			{Plain: "When everything feels flat, small things count double. Was there any moment today that felt even slightly lighter?"},
		},
	},
	ModeAssisted: {
		analysis.CategoryAnxiety: {
			{Plain: "I'm noticing anxiety in what you shared. A grounding step can help: name three things you can see right now."},
			{Plain: "Let's try structuring this: what's the worry, how likely is it really, and what's one thing in your control?"},
		},
		analysis.CategoryStress: {
			{WithMemory: "Building on what I know — %s — let's break the load into pieces. What's the single most urgent item?", Plain: "Let's break the load into pieces. What's the single most urgent item?"},
			{Plain: "Stress shrinks when it's itemized. Can you list the top three things pressing on you?"},
		},
	},
	ModeClinical: {
		analysis.CategoryAnxiety: {
			{WithMemory: "Noting what you've shared previously — %s — anxious activation around performance situations is common. On a scale of 1 to 10, where is the anxiety right now?", Plain: "Anxious activation around situations like this is common and very treatable. On a scale of 1 to 10, where is the anxiety right now?"},
			{Plain: "What you're describing sounds like anticipatory anxiety. How has it affected your sleep and concentration this week?"},
			{Plain: "Let's look at the evidence for the worry together. What specifically do you predict will go wrong?"},
		},
		analysis.CategoryDepression: {
			{Plain: "Low mood that persists deserves attention. How many days this week have felt like this?"},
			{Plain: "I'd like to understand the pattern. Is the heaviness worse at a particular time of day?"},
		},
		analysis.CategoryHealth: {
			{Plain: "Sleep and mood feed each other. What time have you been getting to bed, and what wakes you?"},
		},
	},
	ModeWorkplace: {
		analysis.CategoryWork: {
			{WithMemory: "From what you've told me — %s — this workload pattern keeps repeating. What would a realistic boundary look like this week?", Plain: "This workload pattern sounds unsustainable. What would a realistic boundary look like this week?"},
			{Plain: "Workplace pressure is concrete, so the response can be too. What can be delegated, delayed, or dropped?"},
		},
		analysis.CategoryStress: {
			{Plain: "Job stress compounds quietly. When did you last take a real break during the workday?"},
		},
	},
	ModeRelaxation: {
		analysis.CategoryAnxiety: {
			{Plain: "Let's soften this moment. Breathe in for four, hold for four, out for six — and tell me how that lands."},
			{Plain: "Before the thoughts, the body. Can you relax your shoulders and jaw right now?"},
		},
		analysis.CategoryStress: {
			{Plain: "Tension lives in the body. Try unclenching your hands and taking one slow breath — what shifts?"},
		},
	},
}

// modeGenericFamilies answers when no category sub-family matches.
var modeGenericFamilies = map[Mode]family{
	ModeStandard: {
		{WithMemory: "Thank you for sharing that. It connects with something I remember — %s. Tell me more about how today felt.", Plain: "Thank you for sharing that. Tell me more about how today felt."},
		{Plain: "I'm listening. What feels most important about this right now?"},
		{Plain: "That sounds like a lot to hold. Where would you like to start?"},
	},
	ModeAssisted: {
		{Plain: "Let's work through this step by step. What outcome would feel like progress?"},
		{Plain: "I hear you. To make this concrete: what's one small next action?"},
	},
	ModeClinical: {
		{Plain: "I'd like to understand this more precisely. When did it start, and what makes it better or worse?"},
		{Plain: "Let's track this carefully. How would you rate today compared with the rest of the week?"},
	},
	ModeWorkplace: {
		{Plain: "Work shapes so much of the day. How is this showing up during your working hours?"},
		{Plain: "Let's keep this practical. What's the next conversation or decision this points to?"},
	},
	ModeRelaxation: {
		{Plain: "Let's take this gently. One slow breath first — then tell me what's present for you."},
		{Plain: "There's no rush here. What would feeling a little calmer look like right now?"},
	},
}
