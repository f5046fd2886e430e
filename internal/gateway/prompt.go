package gateway

import (
	"fmt"
	"strings"

	"github.com/yosoyorhan/Fikir-motoru/internal/conversation"
	"github.com/yosoyorhan/Fikir-motoru/internal/persona"
)

// All prompts are Turkish because the personas brainstorm in Turkish. Markers
// quoted inside the prompts must match the marker package byte for byte.

func turnSystemInstruction(p persona.Persona, directive string) string {
	return fmt.Sprintf(`Sen, bir beyin fırtınası oturumunda TEK BİR yapay zeka kişiliğini canlandırıyorsun. Sadece sana atanan rolü oyna ve diğer kişilikler hakkında yorum yapma.

### SENİN ROLÜN ###
%s: %s

### GÖREV ###
Aşağıdaki tartışma geçmişini ve ana konuyu dikkate alarak, SADECE %s olarak bir sonraki cevabı oluştur. Cevabın doğal bir konuşma akışında olmalı. Diğer kişiliklerin ne diyeceğini yazma. Sadece kendi sıranı oyna.`, p, directive, p)
}

func turnPrompt(topic string, history []conversation.Message, p persona.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ana Konu: **%s**\n\n### TARTIŞMA GEÇMİŞİ ###\n", topic)
	b.WriteString(conversation.Transcript(history))
	fmt.Fprintf(&b, "\n\nŞimdi sıra sende. %s olarak cevabını yaz:", p)
	return b.String()
}

// rosterInstructions compiles every catalog persona's directive under the
// session modifiers, in catalog order, as "Persona: directive" blocks.
func rosterInstructions(focus persona.FocusMap, mods persona.Modifiers) string {
	blocks := make([]string, 0, len(persona.Definitions))
	for _, def := range persona.Definitions {
		m := mods
		if def.Persona != persona.Moderator {
			m.BigBossInfluence = 0
		}
		directive := persona.Compile(def, focus.Focus(def.Persona), m)
		blocks = append(blocks, fmt.Sprintf("%s: %s", def.Persona, directive))
	}
	return strings.Join(blocks, "\n\n")
}

func scriptSystemInstruction(req ScriptRequest) string {
	influence := 0
	if req.BigBossActive {
		influence = req.BigBossInfluence
	}
	instructions := rosterInstructions(req.Focus, persona.Modifiers{
		Concise:          req.Concise,
		DeepDive:         req.DeepDive,
		BigBossInfluence: influence,
	})

	var b strings.Builder
	fmt.Fprintf(&b, `Sen, birden fazla yapay zeka kişiliğini canlandıran bir metin oluşturucusun. Aşağıdaki kişiliklerin talimatlarına uyarak bir beyin fırtınası oturumu senaryosu oluşturacaksın.

### KİŞİLİKLER ###
%s

### GÖREV ###
Verilen konu üzerinde bir tartışma senaryosu oluştur. Her kişilik sırayla konuşmalıdır. Tartışma, yenilikçi ve niş bir iş fikri bulana kadar devam etmelidir. Fikir bulunduğunda, Moderatör "SANIRIM BİR FİKİR BULDUM!" diyerek tartışmayı bitirir ve ardından fikrin başlığını ve açıklamasını yazar. SON OLARAK, metnin sonuna özel bir belirteç olan "[FİKİR BULDUM]" ekle.`, instructions)

	if req.BigBossActive {
		b.WriteString("\n\n### ÖNEMLİ KURAL: BIG BOSS AKTİF ###\nEkip üyeleri Big Boss'u etkilemeye çalışmalıdır. Moderatör, Big Boss'un etki seviyesine göre uygun anlarda tartışmayı durdurmalı ve Big Boss'a \"Big Boss, son söz sizin. Bu fikir hakkında ne düşünüyorsunuz?\" diye sormalıdır. Ardından, metnin sonuna özel bir belirteç olan \"[AWAITING_BOSS_INPUT]\" ekleyerek senaryoyu DURDUR.")
	}
	return b.String()
}

func scriptPrompt(req ScriptRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Yeni bir beyin fırtınası başlıyor. Lütfen aşağıdaki detaylara göre bir tartışma senaryosu oluştur.\n\nKonu: **%s**\n\n", req.Topic)
	if req.MainFocus != "" {
		fmt.Fprintf(&b, "ANA ODAK: %s\n\n", req.MainFocus)
	}
	if req.VaultHint != "" {
		fmt.Fprintf(&b, "KASADAKİ FİKİRLER (Bunları Tekrarlama): %s\n\n", req.VaultHint)
	}
	b.WriteString("Senaryo şimdi başlasın. Her cevabı 'Kişilik: Cevap' formatında yaz.")
	return b.String()
}

const summarizeSystemInstruction = `Sen bir beyin fırtınası analiz uzmanısın. Görevin, verilen tartışma metnini analiz ederek ortaya çıkan en iyi 3 ila 5 potansiyel iş fikrini belirlemektir. Her fikir için kısa, akılda kalıcı bir başlık ve tek cümlelik bir özet oluştur. Çıktıyı, her biri 'title' ve 'summary' alanları içeren bir JSON dizisi olarak formatla. Başka hiçbir metin ekleme, sadece JSON dizisini döndür.`

func summarizePrompt(history []conversation.Message) string {
	return "Lütfen aşağıdaki beyin fırtınası konuşmasını analiz et ve potansiyel iş fikirlerini çıkar:\n\n" +
		conversation.Transcript(history)
}

const detailSystemInstruction = `Sen bir iş stratejisi ve ürün yönetimi uzmanısın. Görevin, sana verilen bir beyin fırtınası geçmişi ve seçilen bir fikir özetinden yola çıkarak, bu fikir için detaylı bir konsept oluşturmaktır. Cevabını Markdown formatında, aşağıdaki başlıkları kullanarak yapılandır:

- **Konsept Özeti:** Fikri 2-3 cümleyle yeniden özetle.
- **Anahtar Özellikler:** Ürünün veya hizmetin en önemli 3-5 özelliğini listele.
- **Hedef Kitle:** Bu fikrin kimin sorununu çözdüğünü net bir şekilde tanımla.
- **Gelir Modeli:** Fikrin nasıl para kazanabileceğine dair 1-2 potansiyel yol öner.
- **Potansiyel Riskler:** Fikrin önündeki en büyük 2-3 engeli belirt.
- **İlk Adım (MVP):** Fikri hayata geçirmek için atılması gereken ilk somut adımı veya en basit ürün versiyonunu tanımla.`

func detailPrompt(history []conversation.Message, candidate IdeaSummary) string {
	return fmt.Sprintf("Lütfen aşağıdaki beyin fırtınası konuşması ve seçilen fikri analiz ederek detaylı bir konsept oluştur.\n\n### TARTIŞMA GEÇMİŞİ ###\n%s\n\n### DETAYLANDIRILACAK FİKİR ###\n**Başlık:** %s\n**Özet:** %s",
		conversation.Transcript(history), candidate.Title, candidate.Summary)
}

const topicsSystemInstruction = `Sen yaratıcı bir fikir küratörüsün. Görevin, teknoloji, toplum ve iş dünyasındaki güncel trendleri birleştirerek 3 adet yenilikçi ve ilgi çekici konu başlığı oluşturmaktır. Başlıklar kısa, öz ve beyin fırtınası için ilham verici olmalıdır. Cevabını sadece bir JSON dizisi olarak döndür. Örnek: ["Sürdürülebilir Kentsel Tarım", "Yapay Zeka Destekli Kişisel Gelişim", "Oyunlaştırılmış Finansal Okuryazarlık"]`

const topicsPrompt = "Bana 3 adet ilham verici ve birleştirilebilir konu başlığı öner."

func assistantPrompt(history []conversation.Message) string {
	return conversation.Transcript(history) + "\n\nŞimdi sıra sende. Cerevo olarak cevabını yaz:"
}
