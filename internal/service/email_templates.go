package service

import "fmt"

func roomInviteEmailTemplate(inviterName, inviteCode, joinURL, appName string) (string, string) {
	if inviterName == "" {
		inviterName = "Your partner"
	}
	subject := fmt.Sprintf("%s invited you to %s", inviterName, appName)
	body := fmt.Sprintf(`Hi,

%s started a shared space for the two of you on %s.

Join here: %s

Or enter this invite code in the app: %s

Best,
The %s Team`, inviterName, appName, joinURL, inviteCode, appName)

	return subject, body
}
