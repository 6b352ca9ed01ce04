package assistant

import "strings"

// Greeting opens every new conversation.
const Greeting = "Hi! I'm your AI shopping assistant. How can I help you today? " +
	"I can help you find products, compare features, or answer questions about our products."

// ClearedGreeting replaces the log after Clear.
const ClearedGreeting = "Chat cleared! How can I help you today?"

type rule struct {
	keywords []string
	reply    string
}

// rules are checked in order; the first rule with a keyword contained in the
// lowercased input wins.
var rules = []rule{
	{
		keywords: []string{"headphone", "audio"},
		reply: "I'd recommend our Premium Wireless Headphones! They feature:\n\n" +
			"• Active noise cancellation\n" +
			"• 40-hour battery life\n" +
			"• Premium comfort\n" +
			"• Adaptive EQ\n\n" +
			"Price: $349.99\n" +
			"Rating: ⭐ 4.7/5 (2,847 reviews)\n\n" +
			"Would you like to know more about this product or compare it with others?",
	},
	{
		keywords: []string{"watch", "fitness", "wearable"},
		reply: "The Smart Fitness Watch Pro is perfect for you! Key features:\n\n" +
			"• Advanced health sensors\n" +
			"• GPS tracking\n" +
			"• 7-day battery life\n" +
			"• Water-resistant (50m)\n" +
			"• Sleep & stress monitoring\n\n" +
			"Price: $299.99\n" +
			"Rating: ⭐ 4.5/5 (1,923 reviews)\n\n" +
			"It's great for tracking workouts and daily health metrics!",
	},
	{
		keywords: []string{"laptop", "computer"},
		reply: "We have several excellent laptops available! Could you tell me more about your needs?\n\n" +
			"• Budget range?\n" +
			"• Primary use (gaming, work, study)?\n" +
			"• Screen size preference?\n" +
			"• Any specific requirements?\n\n" +
			"This will help me recommend the best laptop for you!",
	},
	{
		keywords: []string{"gaming", "keyboard"},
		reply: "Check out our Mechanical Gaming Keyboard! Features:\n\n" +
			"• RGB backlit\n" +
			"• Customizable switches\n" +
			"• Macro keys\n" +
			"• Aircraft-grade aluminum frame\n" +
			"• N-key rollover\n\n" +
			"Price: $179.99\n" +
			"Rating: ⭐ 4.6/5 (1,567 reviews)\n\n" +
			"Perfect for both competitive gaming and typing!",
	},
	{
		keywords: []string{"compare"},
		reply: "I'd be happy to help you compare products! Please tell me which products you're " +
			"interested in comparing, and I'll highlight the key differences in:\n\n" +
			"• Features\n" +
			"• Price\n" +
			"• Ratings\n" +
			"• User reviews\n\n" +
			"Just let me know the product names or categories!",
	},
	{
		keywords: []string{"price", "deal", "discount"},
		reply: "We have some great deals right now! Here are today's featured offers:\n\n" +
			"🔥 Smart Fitness Watch Pro - 15% off ($254.99)\n" +
			"🔥 Portable Bluetooth Speaker - 23% off ($99.99)\n" +
			"🔥 Ultra-Slim Power Bank - Free shipping\n\n" +
			"Would you like more details on any of these deals?",
	},
	{
		keywords: []string{"recommend", "suggest", "best"},
		reply: "I'd love to help you find the perfect product! Could you tell me:\n\n" +
			"• What are you looking for?\n" +
			"• Your budget range?\n" +
			"• Any must-have features?\n" +
			"• Preferred category (Audio, Wearables, Gaming, etc.)?\n\n" +
			"The more details you share, the better I can help!",
	},
	{
		keywords: []string{"thank"},
		reply: "You're very welcome! Is there anything else I can help you with today? " +
			"I'm here to assist with product recommendations, comparisons, or any questions you might have! 😊",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply: "Hello! 👋 It's great to hear from you! How can I assist you today? I can help you:\n\n" +
			"• Find the perfect product\n" +
			"• Compare different options\n" +
			"• Check current deals\n" +
			"• Answer product questions\n\n" +
			"What are you interested in?",
	},
}

const fallbackReply = "That's an interesting question! Based on what you've asked, I can help you " +
	"explore our product catalog. We have a wide range of:\n\n" +
	"• Electronics & Laptops\n" +
	"• Audio Equipment\n" +
	"• Wearables & Fitness Trackers\n" +
	"• Gaming Accessories\n" +
	"• Mobile Accessories\n\n" +
	"Could you tell me more about what you're looking for? I'm here to help you find exactly what you need!"

// Reply returns the scripted answer for text. Keywords are plain substrings,
// so "hi" also matches inside longer words such as "this".
func Reply(text string) string {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.reply
			}
		}
	}
	return fallbackReply
}
