package game

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text.
const (
	msgHabitDone       = "Dealt %d damage! +%d XP"
	msgOrbitalStrike   = "Orbital Strike called! %d damage!"
	msgWarpDrive       = "Warp Drive active! Next habit grants %.1fx XP."
	msgStasisField     = "Stasis Field active! Streak is protected."
	msgGachaItem       = "Mystery Box opened! You found 1x %s!"
	msgGachaStarCoins  = "Mystery Box opened! You found %d Star Coins!"
	msgLootFound       = "Space crystal found! +%d gems!"
	msgExpeditionDone  = "Expedition complete! +%d gems!"
	msgStepsSynced     = "Synced %d steps (+%d gems)"
	msgSignupReward    = "Welcome, commander! +%d gems signup bonus."
	msgStreakProtected = "Stasis Field held your %d-day streak."
)

var supportedLanguages = []language.Tag{
	language.English,
	language.Korean,
	language.Japanese,
	language.Spanish,
	language.Chinese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// Codes the mobile app sends that are not BCP 47.
var languageAliases = map[string]string{
	"jp": "ja",
}

var translations = map[language.Tag]map[string]string{
	language.Korean: {
		msgHabitDone:       "%d 데미지! +%d XP",
		msgOrbitalStrike:   "궤도 폭격 요청! %d 데미지!",
		msgWarpDrive:       "워프 드라이브 가동! 다음 습관은 XP %.1f배.",
		msgStasisField:     "정지장 가동! 연속 기록이 보호됩니다.",
		msgGachaItem:       "미스터리 박스 개봉! %s 1개 획득!",
		msgGachaStarCoins:  "미스터리 박스 개봉! 스타 코인 %d개 획득!",
		msgLootFound:       "우주 크리스탈 발견! +%d 젬 획득!",
		msgExpeditionDone:  "탐험 완료! %d 젬 획득!",
		msgStepsSynced:     "%d 걸음 동기화 (+%d 젬)",
		msgSignupReward:    "환영합니다, 사령관님! 가입 보너스 +%d 젬.",
		msgStreakProtected: "정지장이 %d일 연속 기록을 지켰습니다.",
	},
	language.Japanese: {
		msgHabitDone:       "%dダメージ！ +%d XP",
		msgOrbitalStrike:   "軌道爆撃要請！ %dダメージ！",
		msgWarpDrive:       "ワープドライブ起動！ 次の習慣はXP %.1f倍。",
		msgStasisField:     "ステイシスフィールド起動！ 連続記録は保護されます。",
		msgGachaItem:       "ミステリーボックス開封！ %sを1個獲得！",
		msgGachaStarCoins:  "ミステリーボックス開封！ スターコイン%d枚獲得！",
		msgLootFound:       "宇宙クリスタル発見！ +%dジェム！",
		msgExpeditionDone:  "探検完了！ +%dジェム！",
		msgStepsSynced:     "%d歩を同期 (+%dジェム)",
		msgSignupReward:    "ようこそ、司令官！ 登録ボーナス +%dジェム。",
		msgStreakProtected: "ステイシスフィールドが%d日の連続記録を守りました。",
	},
	language.Spanish: {
		msgHabitDone:       "¡%d de daño! +%d XP",
		msgOrbitalStrike:   "¡Ataque orbital solicitado! ¡%d de daño!",
		msgWarpDrive:       "¡Motor warp activo! El próximo hábito da %.1fx XP.",
		msgStasisField:     "¡Campo de estasis activo! Tu racha está protegida.",
		msgGachaItem:       "¡Caja misteriosa abierta! ¡Encontraste 1x %s!",
		msgGachaStarCoins:  "¡Caja misteriosa abierta! ¡Encontraste %d Monedas Estelares!",
		msgLootFound:       "¡Cristal espacial encontrado! ¡+%d gemas!",
		msgExpeditionDone:  "¡Expedición completada! ¡+%d gemas!",
		msgStepsSynced:     "Sincronizados %d pasos (+%d gemas)",
		msgSignupReward:    "¡Bienvenido, comandante! +%d gemas de bono de registro.",
		msgStreakProtected: "El campo de estasis protegió tu racha de %d días.",
	},
	language.Chinese: {
		msgHabitDone:       "造成%d点伤害！+%d XP",
		msgOrbitalStrike:   "轨道打击已呼叫！造成%d点伤害！",
		msgWarpDrive:       "曲速引擎启动！下一个习惯获得%.1f倍XP。",
		msgStasisField:     "静滞力场启动！连续记录受到保护。",
		msgGachaItem:       "神秘宝箱已打开！获得1个%s！",
		msgGachaStarCoins:  "神秘宝箱已打开！获得%d星币！",
		msgLootFound:       "发现太空水晶！+%d宝石！",
		msgExpeditionDone:  "探险完成！+%d宝石！",
		msgStepsSynced:     "已同步%d步（+%d宝石）",
		msgSignupReward:    "欢迎，指挥官！注册奖励+%d宝石。",
		msgStreakProtected: "静滞力场守住了你%d天的连续记录。",
	},
}

func init() {
	for tag, texts := range translations {
		for key, text := range texts {
			_ = message.SetString(tag, key, text)
		}
	}
}

// CanonicalLanguage maps an app language code to the BCP 47 code stored on
// the player. ok is false for languages without notification text.
func CanonicalLanguage(lang string) (string, bool) {
	if alias, ok := languageAliases[lang]; ok {
		lang = alias
	}
	if !supportedLanguage(lang) {
		return "", false
	}
	return lang, true
}

// supportedLanguage reports whether lang resolves to a language we ship
// notification text for.
func supportedLanguage(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	_, _, conf := languageMatcher.Match(tag)
	return conf >= language.High
}

func printer(lang string) *message.Printer {
	if alias, ok := languageAliases[lang]; ok {
		lang = alias
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return message.NewPrinter(language.English)
	}
	matched, _, _ := languageMatcher.Match(tag)
	base, _ := matched.Base()
	return message.NewPrinter(language.Make(base.String()))
}

func (s State) sprintf(key string, args ...any) string {
	return printer(s.Language).Sprintf(key, args...)
}
