package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RefClicksTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promoter_ref_clicks_total",
			Help: "Total tracked referral clicks by attribution result",
		},
		[]string{"result"}, // promoter / user / untracked
	)

	ShareLinkClicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promoter_share_link_clicks_total",
			Help: "Total share link clicks by channel",
		},
		[]string{"channel"},
	)

	TrialInvitesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promoter_trial_invites_issued_total",
			Help: "Total trial invites issued",
		},
	)

	TrialInvitesDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promoter_trial_invites_denied_total",
			Help: "Total trial invite issuance denials by reason",
		},
		[]string{"reason"},
	)

	TrialsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promoter_trials_claimed_total",
			Help: "Total trial invites successfully redeemed",
		},
	)

	ReferralsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promoter_referrals_applied_total",
			Help: "Total referral codes successfully applied",
		},
	)
)
