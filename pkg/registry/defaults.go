package registry

// Default returns the registry for the current production deployment.
// Operators targeting another revision supply their own TOML table; these
// IDs go stale whenever the service reshuffles headers.
func Default() *Registry {
	r, err := New(
		map[Kind]uint16{
			KindServerKeyExchange: 503,
			KindServerKeyComplete: 3722,
			KindAuthOK:            115,
			KindPing:              2829,
			KindLatencyResponse:   1380,
			KindDisconnect:        4000,
			KindBanned:            1510,
			KindFloodControl:      1475,
			KindUsers:             2887,
			KindUserRemove:        1069,
			KindUserUpdate:        1030,
			KindChat:              3423,
			KindFloorPlan:         590,
			KindReliefMap:         3055,
			KindRoomEntryTile:     1251,
			KindUserObject:        1157,
			KindFlatCreated:       379,
			KindNavigatorResults:  537,
		},
		map[Kind]uint16{
			KindClientHello:          4000,
			KindInitKeyExchange:      1445,
			KindCompleteKeyExchange:  3393,
			KindVersionCheck:         1422,
			KindUniqueID:             760,
			KindTicket:               3674,
			KindInfoRetrieve:         3745,
			KindPong:                 2418,
			KindLatencyPing:          1255,
			KindWalk:                 1551,
			KindShout:                901,
			KindWhisper:              1758,
			KindDance:                785,
			KindSign:                 1153,
			KindPosture:              2980,
			KindRespectUser:          2911,
			KindReplenishRespect:     2865,
			KindGetGuestRoom:         2158,
			KindGetInterstitial:      1452,
			KindQuitRoom:             765,
			KindSelectInitialRoom:    1993,
			KindUpdateHomeRoom:       763,
			KindNavigatorSearch:      3780,
			KindUpdateFigure:         1724,
			KindChangeMotto:          2599,
			KindChangeUsername:       3685,
			KindRequestFriend:        1718,
			KindAvatarEffectActivate: 1639,
			KindAvatarEffectSelect:   2538,
			KindPurchase:             3853,
			KindRewardStatus:         3488,
			KindRewardClaim:          649,
		},
	)
	if err != nil {
		panic(err) // static tables, cannot fail
	}
	return r
}
