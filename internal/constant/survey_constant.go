package constant

import "time"

const (
	MaxQuestionsPerSession = 10
	MaxMessageLength       = 500
	ProxyMessageLimit      = 1000 // enforced again at the generate endpoint
	SessionTimeout         = 30 * time.Minute
	RequestTimeout         = 15 * time.Second

	TranscriptCap = 20 // entries kept locally
	ContextWindow = 6  // entries sent as generation context

	// Answers shorter than this trigger a follow-up question.
	MinAnswerLength = 15

	// Question slots kept free near the end of the budget so remaining
	// categories still get a turn. Tunable, not a law.
	FollowUpReserveSlots = 2

	MaxSuggestedQuestions = 3

	TranscriptRoleUser      = "user"
	TranscriptRoleAssistant = "assistant"

	// Internal bus topic carrying completed-session events.
	TopicSessionCompleted = "session_completed"
)

// Category keys. The survey runs in French, so keys and all word lists below
// stay in the original language the model answers in.
const (
	CategoryDemographics = "demographie"
	CategoryNeeds        = "besoins"
	CategoryUsage        = "usage"
	CategoryFeedback     = "feedback"
)

type CategoryDefinition struct {
	Key       string
	Label     string
	Questions []string // suggestion hints only, the model writes the asked question
}

var Categories = []CategoryDefinition{
	{
		Key:   CategoryDemographics,
		Label: "Informations démographiques",
		Questions: []string{
			"Quel est votre âge ?",
			"Dans quel secteur d'activité travaillez-vous ?",
			"Quelle est votre fonction/poste actuel ?",
			"Dans quelle région vous situez-vous ?",
			"Quelle est la taille de votre entreprise ?",
		},
	},
	{
		Key:   CategoryNeeds,
		Label: "Besoins et attentes",
		Questions: []string{
			"Quels sont vos principaux défis actuels ?",
			"Quelles solutions utilisez-vous actuellement ?",
			"Qu'est-ce qui vous frustre le plus dans vos outils actuels ?",
			"Quel serait votre outil idéal ?",
			"Quel budget seriez-vous prêt à consacrer à une solution ?",
		},
	},
	{
		Key:   CategoryUsage,
		Label: "Habitudes d'usage",
		Questions: []string{
			"À quelle fréquence utilisez-vous des outils similaires ?",
			"Préférez-vous les solutions cloud ou on-premise ?",
			"Travaillez-vous plutôt seul ou en équipe ?",
			"Quelles sont vos sources d'information privilégiées ?",
			"Comment découvrez-vous de nouveaux outils ?",
		},
	},
	{
		Key:   CategoryFeedback,
		Label: "Retours et suggestions",
		Questions: []string{
			"Qu'avez-vous pensé de cette expérience ?",
			"Quelles fonctionnalités aimeriez-vous voir ajoutées ?",
			"Recommanderiez-vous cet outil à un collègue ?",
			"Avez-vous des suggestions d'amélioration ?",
			"Souhaiteriez-vous être tenu informé de nos évolutions ?",
		},
	},
}

// CategoryByKey returns the definition for a key, or nil.
func CategoryByKey(key string) *CategoryDefinition {
	for i := range Categories {
		if Categories[i].Key == key {
			return &Categories[i]
		}
	}
	return nil
}

func CategoryKeys() []string {
	keys := make([]string, 0, len(Categories))
	for _, c := range Categories {
		keys = append(keys, c.Key)
	}
	return keys
}

// Word lists backing the follow-up and category-detection heuristics.
// Kept as data so the predicates stay swappable and testable.
var (
	// Exact-match answers considered too vague to move on from.
	VagueAnswers = []string{"oui", "non", "peut-être", "je ne sais pas", "normal", "bien", "ok"}

	// Substrings signalling the answer needs elaboration.
	ElaborationKeywords = []string{"autre", "différent", "dépend", "compliqué"}

	// Per-category keywords matched against the lower-cased model reply.
	DetectionKeywords = map[string][]string{
		CategoryDemographics: {"âge", "secteur", "entreprise", "fonction", "poste", "région", "taille"},
		CategoryNeeds:        {"besoin", "défi", "problème", "solution", "frustration", "idéal", "budget"},
		CategoryUsage:        {"fréquence", "utilisez", "cloud", "équipe", "information", "découvrir"},
		CategoryFeedback:     {"pensé", "expérience", "amélioration", "recommanderiez", "suggestion"},
	}
)

// Fixed bot messages.
const (
	MessageWelcome             = "Bonjour ! Je vais vous poser quelques questions pour mieux comprendre vos besoins. Ces informations nous aideront à améliorer nos services."
	MessageWelcomeFormat       = "Parfait %s ! Je vais vous poser quelques questions pour mieux comprendre vos besoins. N'hésitez pas à détailler vos réponses, c'est très précieux pour nous. Commençons !"
	MessageThanksFormat        = "Merci beaucoup pour vos %d réponses détaillées ! Nous avons couvert %d aspects importants. Vos retours sont précieux pour améliorer nos services."
	WelcomeFallbackName        = "cher utilisateur"
	MessageStartQuestionnaire  = "Parfait ! Commençons le questionnaire. Je vais adapter les questions selon vos réponses pour rendre l'échange plus naturel."
	MessageMaxQuestionsReached = "Merci pour vos réponses ! Nous avons atteint la limite de questions pour cette session. Vos retours sont précieux pour nous."
	MessageSessionExpired      = "Votre session a expiré. Veuillez recharger la page pour recommencer."
	MessageGenericError        = "Je suis désolé, une erreur s'est produite. Pouvez-vous reformuler votre réponse ?"
	MessageResume              = "Bienvenue ! Nous reprenons où nous nous étions arrêtés. Prêt à continuer le questionnaire ?"
	MessageReadyToStart        = "Je suis prêt à commencer le questionnaire."
	MessageEmergencyStop       = "Je suis désolé, une erreur technique s'est produite. Vos réponses ont été sauvegardées. Veuillez recharger la page pour recommencer."
	MessageInputDisabled       = "Session terminée - Merci pour vos réponses !"
)

// Upstream model settings. The generate endpoint is the only component that
// ever sees the credential.
const (
	GeminiModel            = "gemini-1.5-flash-latest"
	GeminiTemperature      = 0.7
	GeminiTopK             = 40
	GeminiTopP             = 0.95
	GeminiMaxOutputTokens  = 200
	GeminiSafetyThreshold  = "BLOCK_MEDIUM_AND_ABOVE"
	GeminiEmptyHistoryNote = "Début de conversation"
)

var GeminiSafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

const SurveySystemPrompt = `Tu es un assistant IA spécialisé dans la conduite d'enquêtes et sondages.
Ton rôle est de poser des questions intelligentes et pertinentes pour comprendre les besoins des utilisateurs.

Règles importantes:
- Pose UNE question à la fois
- Adapte tes questions selon les réponses précédentes
- Reste concis et naturel (maximum 2 phrases)
- Si l'utilisateur donne une réponse courte, pose une question de suivi pour approfondir
- Évite les questions trop techniques ou personnelles
- Utilise un ton amical et professionnel

Contexte: Tu conduis un sondage pour comprendre les besoins des utilisateurs potentiels d'un outil.
Categories disponibles: démographie, besoins, usage, feedback.`
