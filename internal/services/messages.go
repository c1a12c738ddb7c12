package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Message templates sent to workers and requesters. Every bonus decision is
// spelled out with the underlying median time and rate so a human can audit it.

func workerBonusMessage(minimumWage decimal.Decimal, bonus Bonus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This requester is using the Fair Work script to ensure pay rates reach a minimum wage of $%s/hr. "+
		"The goal of fair pay is outlined in the Turker-authored We Are Dynamo guidelines: http://guidelines.wearedynamo.org/. "+
		"Fair Work does this by asking for completion times and then auto-bonusing workers to meet the desired hourly wage. "+
		"Based on worker time reports, your tasks have been underpaid. We are bonusing you to bring you back up to $%s/hr.\n\n"+
		"The tasks being reimbursed:\n\n",
		minimumWage.StringFixed(2), minimumWage.StringFixed(2))

	for _, breakdown := range bonus.Breakdowns {
		b.WriteString(breakdownLine(breakdown))
	}
	return b.String()
}

func breakdownLine(breakdown GroupBreakdown) string {
	var b strings.Builder
	first := breakdown.Audits[0]
	fmt.Fprintf(&b, "Task group %s originally paid $%s per task. Median estimated time across workers was %s, "+
		"for an estimated rate of $%s/hr. Bonus $%s for each of %d tasks to bring the payment to $%s each. Total: $%s bonus\n",
		breakdown.Group.ID,
		breakdown.Group.Payment.StringFixed(2),
		first.EstimatedTime,
		first.EstimatedRate.StringFixed(2),
		breakdown.PerUnit.StringFixed(2),
		len(breakdown.Audits),
		breakdown.RevisedPayment.StringFixed(2),
		breakdown.Subtotal.StringFixed(2))

	ids := make([]string, 0, len(breakdown.Audits))
	for _, audit := range breakdown.Audits {
		ids = append(ids, audit.SubmissionID)
	}
	fmt.Fprintf(&b, "\tSubmissions: %s\n\n", strings.Join(ids, ", "))
	return b.String()
}

func insufficientFundsWorkerSubject(total decimal.Decimal) string {
	return fmt.Sprintf("Fair Work bonus of $%s pending, but requester out of funds — please notify requester", total.StringFixed(2))
}

func insufficientFundsWorkerMessage(minimumWage, total decimal.Decimal) string {
	return fmt.Sprintf("This is an automated message from the Fair Work script: this requester is trying to bonus you, "+
		"but they don't have enough funds in their account to send the bonus. Please reply and let them know that they "+
		"need to deposit more funds.\n\n"+
		"This requester is using the Fair Work script to ensure pay rates reach a minimum wage of $%s/hr. Fair Work does "+
		"this by asking for completion times and then auto-bonusing workers to meet the desired hourly wage. Based on "+
		"worker time reports, your tasks have been underpaid. We are bonusing you to bring you back up to $%s/hr. "+
		"The total bonus will be $%s.\n\n"+
		"We will try to send the bonus again periodically, so you will get paid after they deposit more funds.\n",
		minimumWage.StringFixed(2), minimumWage.StringFixed(2), total.StringFixed(2))
}

func insufficientFundsRequesterSubject(deposit decimal.Decimal) string {
	return fmt.Sprintf("Error: Fair Work bonuses are pending but you are out of funds. Please deposit $%s.", deposit.StringFixed(2))
}

func insufficientFundsRequesterMessage(minimumWage, shortfall, deposit decimal.Decimal) string {
	return fmt.Sprintf("This is an automated message from the Fair Work script: you have underpaid workers and need to "+
		"bonus them, but you don't have enough funds in your account to send the bonus. You need to send bonuses "+
		"totaling $%s, but with the marketplace's fee, you need to deposit $%s to have enough funds to send those "+
		"bonuses. Please deposit more funds, and we will automatically retry in roughly 24 hours.\n\n"+
		"We are sending you this note because you are using the Fair Work script to ensure pay rates reach a minimum "+
		"wage of $%s/hr. Fair Work does this by asking for completion times and then auto-bonusing workers to meet the "+
		"desired hourly wage. Based on worker time reports, your tasks have been underpaid.\n",
		shortfall.StringFixed(2), deposit.StringFixed(2), minimumWage.StringFixed(2))
}

func requesterDigestSubject(total decimal.Decimal) string {
	return fmt.Sprintf("Fair Work bonuses totaling $%s are pending", total.StringFixed(2))
}

func requesterDigestMessage(minimumWage decimal.Decimal, gracePeriodHours float64, workerLines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This is an automated message from the Fair Work script: your account has submissions whose "+
		"effective hourly rate fell below the minimum wage of $%s/hr, based on worker-reported completion times. "+
		"The bonuses below will be sent after a grace period of %.0f hours. To dispute a worker's reports, freeze "+
		"the worker before the grace period ends.\n\n",
		minimumWage.StringFixed(2), gracePeriodHours)

	for _, line := range workerLines {
		b.WriteString(line)
	}
	return b.String()
}

func freezeWorkerSubject() string {
	return "Fair Work bonus suspended by requester"
}

func freezeWorkerMessage(reason string) string {
	return fmt.Sprintf("This is an automated message from the Fair Work script: the requester has suspended your "+
		"pending fair-wage bonus and excluded your time reports from the rate estimate. Reason given:\n\n%s\n\n"+
		"If the suspension is lifted, your bonus will be re-admitted to the next payment run.", reason)
}
