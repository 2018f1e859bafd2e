package models

// FallbackJourney returns the built-in demo dataset substituted when
// fallback mode is enabled and the selected provider fails. The data is
// flagged IsFallback so the view layer can show an advisory banner instead
// of an error.
func FallbackJourney() *JourneyData {
	return &JourneyData{
		Title:       "初次尝试 App 控制玩具的减压之旅（离线演示）",
		Summary:     "一位工作繁忙的都市白领在晚间独处时，第一次尝试通过手机 App 控制的按摩玩具来缓解压力。",
		PersonaName: "林小雅 · 32岁 市场主管",
		IsFallback:  true,
		Stages: []JourneyStage{
			{
				StageName:           "期待与决定",
				Goal:                "在疲惫的一天后为自己创造放松的空间",
				UserAction:          "1. 结束加班回到家中 **锁好房门**\n2. 调暗灯光并播放轻音乐\n3. 从床头柜取出 **隐蔽收纳盒** 中的设备",
				Touchpoints:         "床头柜收纳盒、手机、智能灯光",
				Thinking:            "今天太累了，希望这个新买的设备真的像评测里说的那么好用。",
				Feeling:             "期待中带着一丝紧张",
				PainPoints:          "1. 包装上的品牌标识 **过于显眼**，担心被室友注意到\n2. 第一次使用 **不确定流程**，需要翻说明书",
				DesignOpportunities: "1. 采用 **无标识中性包装** 与磨砂收纳盒\n2. App 内置 **首次使用引导动画**，替代纸质说明书",
				TechnicalSupport:    "1. **NFC 标签** 识别设备自动弹出引导\n2. App 端 **本地化内容缓存**\n3. 收纳盒 **UV 抑菌涂层**",
				EmotionScore:        6,
			},
			{
				StageName:           "开箱与配对",
				Goal:                "快速完成充电确认与蓝牙连接",
				UserAction:          "1. 长按电源键 **唤醒设备**\n2. 打开 App 按提示 **搜索并配对**\n3. 确认电量与固件状态",
				Touchpoints:         "设备电源键、App 配对页、LED 指示灯",
				Thinking:            "怎么还没连上？别在这个时候掉链子啊。",
				Feeling:             "轻微的焦虑与不耐烦",
				PainPoints:          "1. 蓝牙搜索 **耗时近20秒**，等待打断了情绪铺垫\n2. LED 指示灯在暗光下 **过于刺眼**\n3. 配对失败提示 **文案生硬**，加重挫败感",
				DesignOpportunities: "1. 引入 **一键快速重连**，记忆上次配对设备\n2. 增加 **环境光自适应** 的指示灯亮度\n3. 失败提示改为 **安抚性文案** 并给出具体下一步",
				TechnicalSupport:    "1. 低功耗蓝牙 **5.0 芯片**（Nordic nRF52 系列）\n2. **绑定缓存** 与自动重连协议\n3. 环境光传感器（**APDS-9960**）联动 LED 驱动",
				EmotionScore:        4,
			},
			{
				StageName:           "体验与沉浸",
				Goal:                "找到适合当下心情的模式并沉浸其中",
				UserAction:          "1. 在 App 中滑动 **强度曲线** 微调节奏\n2. 切换到收藏的 **预设模式**\n3. 放下手机闭眼感受",
				Touchpoints:         "App 控制滑块、硅胶触感表面、振动马达",
				Thinking:            "这个波浪模式还不错，不过每次都要低头看手机有点出戏。",
				Feeling:             "逐渐放松并进入状态",
				PainPoints:          "1. 调节强度必须 **盯着屏幕**，打断沉浸感\n2. 马达在安静环境中 **嗡嗡声明显**，让人分心\n3. 手湿时触屏 **操作失灵**",
				DesignOpportunities: "1. 支持 **设备端实体按键** 盲操切换模式\n2. 推出 **静音马达模式**，牺牲部分强度换取安静\n3. 增加 **手势/语音控制** 降低对屏幕的依赖",
				TechnicalSupport:    "1. **无刷静音马达** 与减振悬浮结构\n2. 电容触控 **防误触算法**\n3. BLE 低延迟 **自定义波形协议**\n4. 本地 **模式记忆存储**",
				EmotionScore:        8,
			},
			{
				StageName:           "峰值体验",
				Goal:                "在不被打扰的情况下达到体验高点",
				UserAction:          "1. 保持当前模式 **不再调整**\n2. 跟随节奏放松呼吸",
				Touchpoints:         "振动马达、身体感受",
				Thinking:            "就是现在，千万别来消息提醒。",
				Feeling:             "愉悦与满足的峰值",
				PainPoints:          "1. 手机推送通知 **突然弹出**，险些打断体验\n2. 电量不足提醒 **时机糟糕**",
				DesignOpportunities: "1. App 进入体验模式时 **自动开启勿扰**\n2. 电量预警 **提前到会话开始前**，而非过程中",
				TechnicalSupport:    "1. 系统级 **勿扰模式 API** 联动\n2. 电量 **预测算法**（基于历史会话时长）\n3. 振动曲线 **渐强渐弱平滑插值**",
				EmotionScore:        10,
			},
			{
				StageName:           "事后护理与整理",
				Goal:                "清洁收纳设备并平静地回到日常",
				UserAction:          "1. 用温水与专用清洁液 **清洗设备**\n2. 擦干后放回 **充电收纳盒**\n3. 在 App 中查看本次 **会话小结**",
				Touchpoints:         "清洁液、充电收纳盒、App 小结页",
				Thinking:            "清洗起来比想象中方便，下次可以试试别的模式。",
				Feeling:             "平静、放松、带着满足感",
				PainPoints:          "1. 充电接口处 **不易擦干**，担心进水\n2. App 缺少 **温和的收尾引导**，体验结束得有些突兀",
				DesignOpportunities: "1. 采用 **磁吸无孔充电** 实现全身水洗\n2. 增加 **事后护理页**：呼吸引导、补水提醒与心情记录",
				TechnicalSupport:    "1. **IPX7 级防水** 一体成型工艺\n2. **磁吸触点充电** 模块\n3. 会话数据 **端侧加密存储**",
				EmotionScore:        7,
			},
		},
	}
}
